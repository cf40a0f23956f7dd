package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"adf4351"
)

// Version information (set by build flags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Profile holds the synthesizer settings for one programming pass.
// Command-line flags override values loaded from a YAML profile.
type Profile struct {
	ReferenceMHz      float64 `yaml:"reference_mhz"`
	RCounter          uint16  `yaml:"r_counter"`
	RefDoubler        bool    `yaml:"ref_doubler"`
	RefDiv2           bool    `yaml:"ref_div2"`
	OutputPower       uint8   `yaml:"output_power"`
	OutputDisabled    bool    `yaml:"output_disabled"`
	ChargePumpCurrent uint8   `yaml:"charge_pump_current"`
	FrequencyMHz      float64 `yaml:"frequency_mhz"`
	SpacingMHz        float64 `yaml:"spacing_mhz"`
}

// DefaultProfile returns a profile with the library defaults.
func DefaultProfile() Profile {
	return Profile{
		ReferenceMHz:      adf4351.DefaultReferenceFreqMHz,
		RCounter:          1,
		OutputPower:       adf4351.DefaultOutputPower,
		ChargePumpCurrent: adf4351.DefaultChargePumpCurrent,
		SpacingMHz:        adf4351.DefaultChannelSpacingMHz,
	}
}

// LoadProfile reads a YAML profile file over the defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse profile: %w", err)
	}
	return p, nil
}

// newSynthesizer builds a configured Synthesizer around the given sink.
func newSynthesizer(p Profile, sink adf4351.RegisterSink, logger *logrus.Logger) *adf4351.Synthesizer {
	syn := adf4351.New(sink, logger)
	syn.SetReference(p.ReferenceMHz, p.RCounter, p.RefDoubler, p.RefDiv2)
	syn.SetOutputPower(p.OutputPower)
	syn.EnableOutput(!p.OutputDisabled)
	syn.SetChargePumpCurrent(p.ChargePumpCurrent)
	return syn
}

// runDump computes the register set for the profile and prints it, highest
// address first (the order the words would be written to the chip).
func runDump(p Profile, out io.Writer, logger *logrus.Logger) error {
	sink := &adf4351.CaptureSink{}
	syn := newSynthesizer(p, sink, logger)

	if err := syn.SetFrequency(p.FrequencyMHz, p.SpacingMHz); err != nil {
		return err
	}

	fmt.Fprintf(out, "# f_out=%.6f MHz, spacing=%.6f MHz, pfd=%.6f MHz\n",
		syn.Frequency(), p.SpacingMHz, syn.PFDFrequency())
	for i, word := range sink.Words {
		fmt.Fprintf(out, "R%d = 0x%08X\n", len(sink.Words)-1-i, word)
	}
	return nil
}

// runProgram performs a single programming pass over SPI.
func runProgram(p Profile, spiPath, lePin string, logger *logrus.Logger) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize host: %w", err)
	}

	port, err := spireg.Open(spiPath)
	if err != nil {
		return fmt.Errorf("failed to open SPI port %q: %w", spiPath, err)
	}
	defer port.Close()

	le := gpioreg.ByName(lePin)
	if le == nil {
		return fmt.Errorf("no such GPIO pin %q", lePin)
	}

	sink, err := adf4351.NewSPISink(port, le, logger)
	if err != nil {
		return err
	}

	syn := newSynthesizer(p, sink, logger)
	if err := syn.SetFrequency(p.FrequencyMHz, p.SpacingMHz); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"freq_mhz": syn.Frequency(),
		"pfd_mhz":  syn.PFDFrequency(),
	}).Info("Synthesizer programmed")
	return nil
}

func main() {
	var (
		configPath string
		verbose    bool
		spiPath    string
		lePin      string
	)
	profile := DefaultProfile()

	logger := logrus.New()

	loadProfile := func(cmd *cobra.Command) (Profile, error) {
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}
		p := profile
		if configPath != "" {
			loaded, err := LoadProfile(configPath)
			if err != nil {
				return p, err
			}
			// Flags set on the command line win over the profile file.
			loaded.apply(cmd, &profile)
			p = loaded
		}
		return p, nil
	}

	rootCmd := &cobra.Command{
		Use:   "adfctl",
		Short: "ADF4351 synthesizer register tool",
		Long: `ADF4351 wideband synthesizer register tool.

Computes the fractional-N register set for a target output frequency and
either prints it (dump) or writes it to a chip over SPI (program).

Example usage:
  adfctl dump --freq 1000.0 --spacing 0.01
  adfctl program --spi /dev/spidev0.0 --le GPIO25 --freq 433.92`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML profile file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().Float64VarP(&profile.FrequencyMHz, "freq", "f", 0, "Output frequency (MHz)")
	rootCmd.PersistentFlags().Float64VarP(&profile.SpacingMHz, "spacing", "s", adf4351.DefaultChannelSpacingMHz, "Channel spacing (MHz)")
	rootCmd.PersistentFlags().Float64VarP(&profile.ReferenceMHz, "ref", "r", adf4351.DefaultReferenceFreqMHz, "Reference frequency (MHz)")
	rootCmd.PersistentFlags().Uint16Var(&profile.RCounter, "r-counter", 1, "Reference divider (1-1023)")
	rootCmd.PersistentFlags().BoolVar(&profile.RefDoubler, "doubler", false, "Enable reference doubler")
	rootCmd.PersistentFlags().BoolVar(&profile.RefDiv2, "div2", false, "Enable reference divide-by-2")
	rootCmd.PersistentFlags().Uint8VarP(&profile.OutputPower, "power", "p", adf4351.DefaultOutputPower, "Output power level (0-3)")
	rootCmd.PersistentFlags().BoolVar(&profile.OutputDisabled, "output-off", false, "Leave the RF output stage disabled")
	rootCmd.PersistentFlags().Uint8Var(&profile.ChargePumpCurrent, "cp-current", adf4351.DefaultChargePumpCurrent, "Charge pump current code (0-15)")

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Compute and print the register set",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			return runDump(p, cmd.OutOrStdout(), logger)
		},
	}

	programCmd := &cobra.Command{
		Use:   "program",
		Short: "Write the register set to a chip over SPI",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			return runProgram(p, spiPath, lePin, logger)
		},
	}
	programCmd.Flags().StringVar(&spiPath, "spi", "/dev/spidev0.0", "SPI port name")
	programCmd.Flags().StringVar(&lePin, "le", "GPIO25", "Latch enable GPIO pin name")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "adfctl ADF4351 register tool\n")
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Time: %s\n", BuildTime)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		},
	}

	rootCmd.AddCommand(dumpCmd, programCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// apply copies flag values the user set explicitly onto the loaded profile.
func (p *Profile) apply(cmd *cobra.Command, flagProfile *Profile) {
	flags := cmd.Flags()
	if flags.Changed("freq") {
		p.FrequencyMHz = flagProfile.FrequencyMHz
	}
	if flags.Changed("spacing") {
		p.SpacingMHz = flagProfile.SpacingMHz
	}
	if flags.Changed("ref") {
		p.ReferenceMHz = flagProfile.ReferenceMHz
	}
	if flags.Changed("r-counter") {
		p.RCounter = flagProfile.RCounter
	}
	if flags.Changed("doubler") {
		p.RefDoubler = flagProfile.RefDoubler
	}
	if flags.Changed("div2") {
		p.RefDiv2 = flagProfile.RefDiv2
	}
	if flags.Changed("power") {
		p.OutputPower = flagProfile.OutputPower
	}
	if flags.Changed("output-off") {
		p.OutputDisabled = flagProfile.OutputDisabled
	}
	if flags.Changed("cp-current") {
		p.ChargePumpCurrent = flagProfile.ChargePumpCurrent
	}
}
