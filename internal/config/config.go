// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ColonelBlimp/lasertag/internal/detector"
	"github.com/ColonelBlimp/lasertag/internal/filter"
)

const (
	AppName       = "lasertag"
	ConfigType    = "yaml"
	DefaultConfig = `# Laser Tag Configuration

# Sampling
buffer_capacity: 32768  # ADC buffer size in samples (power of 2)
sample_rate: 100000     # ADC rate in Hz; the filters are designed for 100000
device_index: -1        # Capture device for 'listen', -1 for default

# Hit detection
fudge_factors: [5, 10, 20, 50, 100, 200, 500, 1000]
fudge_factor_index: 3   # Active fudge factor; hit needs power > median * factor
min_power: 0.0001       # Strongest channel must reach this power to count
ignored_frequencies: [] # Frequency numbers (0-9) that never register, e.g. your team

# Timers (in ticks, one tick per sample)
lockout_ticks: 50000    # Detection is blocked this long after a hit (500 ms)
hit_led_ticks: 50000    # Hit LED stays lit this long (500 ms)

# Transmitter
frequency_number: 0     # Player frequency (0-9) to transmit on
continuous: false       # Transmit bursts back to back

# Simulation
run_interval_ticks: 1000 # Detector runs once per this many ticks
noise: 0.01             # Sensor noise, relative to full scale
attenuation: 0.25       # Received signal amplitude, relative to full scale

# Output
debug: false            # Enable debug output
`
)

const (
	minBufferCapacity = 1024
	maxBufferCapacity = 1 << 20
)

// Settings holds all application configuration
type Settings struct {
	// Sampling
	BufferCapacity int `mapstructure:"buffer_capacity"`
	SampleRate     int `mapstructure:"sample_rate"`
	DeviceIndex    int `mapstructure:"device_index"`

	// Hit detection
	FudgeFactors       []float64 `mapstructure:"fudge_factors"`
	FudgeFactorIndex   int       `mapstructure:"fudge_factor_index"`
	MinPower           float64   `mapstructure:"min_power"`
	IgnoredFrequencies []int     `mapstructure:"ignored_frequencies"`

	// Timers
	LockoutTicks int `mapstructure:"lockout_ticks"`
	HitLEDTicks  int `mapstructure:"hit_led_ticks"`

	// Transmitter
	FrequencyNumber int  `mapstructure:"frequency_number"`
	Continuous      bool `mapstructure:"continuous"`

	// Simulation
	RunIntervalTicks int     `mapstructure:"run_interval_ticks"`
	Noise            float64 `mapstructure:"noise"`
	Attenuation      float64 `mapstructure:"attenuation"`

	// Output
	Debug bool `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/lasertag/
func Init() error {
	def := detector.DefaultConfig()
	viper.SetDefault("buffer_capacity", 32768)
	viper.SetDefault("sample_rate", filter.SampleRate)
	viper.SetDefault("device_index", -1)
	viper.SetDefault("fudge_factors", def.FudgeFactors)
	viper.SetDefault("fudge_factor_index", def.FudgeFactorIndex)
	viper.SetDefault("min_power", def.MinPower)
	viper.SetDefault("ignored_frequencies", []int{})
	viper.SetDefault("lockout_ticks", 50000)
	viper.SetDefault("hit_led_ticks", 50000)
	viper.SetDefault("frequency_number", 0)
	viper.SetDefault("continuous", false)
	viper.SetDefault("run_interval_ticks", 1000)
	viper.SetDefault("noise", 0.01)
	viper.SetDefault("attenuation", 0.25)
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// .config.yaml (hidden) wins over config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("read config: %w", err)
		}
		if err = ensureConfigExists(filepath.Join(configDir, AppName)); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Sampling
	if s.BufferCapacity < minBufferCapacity || s.BufferCapacity > maxBufferCapacity {
		errs = append(errs, fmt.Errorf("buffer_capacity must be between %d and %d, got %d",
			minBufferCapacity, maxBufferCapacity, s.BufferCapacity))
	} else if s.BufferCapacity&(s.BufferCapacity-1) != 0 {
		errs = append(errs, fmt.Errorf("buffer_capacity must be a power of 2, got %d", s.BufferCapacity))
	}
	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", s.SampleRate))
	}

	// Hit detection
	if len(s.FudgeFactors) == 0 {
		errs = append(errs, errors.New("fudge_factors must not be empty"))
	}
	for i, f := range s.FudgeFactors {
		if !(f > 0) {
			errs = append(errs, fmt.Errorf("fudge_factors[%d] must be positive, got %v", i, f))
		}
	}
	if s.FudgeFactorIndex < 0 || s.FudgeFactorIndex >= len(s.FudgeFactors) {
		errs = append(errs, fmt.Errorf("fudge_factor_index must be between 0 and %d, got %d",
			len(s.FudgeFactors)-1, s.FudgeFactorIndex))
	}
	if s.MinPower < 0 {
		errs = append(errs, fmt.Errorf("min_power must not be negative, got %v", s.MinPower))
	}
	for _, ch := range s.IgnoredFrequencies {
		if ch < 0 || ch >= filter.ChannelCount {
			errs = append(errs, fmt.Errorf("ignored_frequencies entries must be between 0 and %d, got %d",
				filter.ChannelCount-1, ch))
		}
	}

	// Timers
	if s.LockoutTicks < 1 {
		errs = append(errs, fmt.Errorf("lockout_ticks must be at least 1, got %d", s.LockoutTicks))
	}
	if s.HitLEDTicks < 1 {
		errs = append(errs, fmt.Errorf("hit_led_ticks must be at least 1, got %d", s.HitLEDTicks))
	}

	// Transmitter
	if s.FrequencyNumber < 0 || s.FrequencyNumber >= filter.ChannelCount {
		errs = append(errs, fmt.Errorf("frequency_number must be between 0 and %d, got %d",
			filter.ChannelCount-1, s.FrequencyNumber))
	}

	// Simulation
	if s.RunIntervalTicks < 1 || s.RunIntervalTicks > s.BufferCapacity {
		errs = append(errs, fmt.Errorf("run_interval_ticks must be between 1 and buffer_capacity (%d), got %d",
			s.BufferCapacity, s.RunIntervalTicks))
	}
	if s.Noise < 0 || s.Noise > 1 {
		errs = append(errs, fmt.Errorf("noise must be between 0.0 and 1.0, got %v", s.Noise))
	}
	if s.Attenuation <= 0 || s.Attenuation > 1 {
		errs = append(errs, fmt.Errorf("attenuation must be greater than 0.0 and at most 1.0, got %v", s.Attenuation))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// DetectorConfig returns the detection settings.
func (s *Settings) DetectorConfig() detector.Config {
	return detector.Config{
		FudgeFactors:     s.FudgeFactors,
		FudgeFactorIndex: s.FudgeFactorIndex,
		MinPower:         s.MinPower,
	}
}

// IgnoreMask converts ignored_frequencies to a per-channel mask.
func (s *Settings) IgnoreMask() [filter.ChannelCount]bool {
	var mask [filter.ChannelCount]bool
	for _, ch := range s.IgnoredFrequencies {
		if ch >= 0 && ch < filter.ChannelCount {
			mask[ch] = true
		}
	}
	return mask
}
