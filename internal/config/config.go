package config

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "COPYDIR"

type Config struct {
	SourceDir string `mapstructure:"source_dir"`
	TargetDir string `mapstructure:"target_dir"`
	Extension string `mapstructure:"extension"`
	Recursive bool   `mapstructure:"recursive"`
	DryRun    bool   `mapstructure:"dry_run"`
	Verbose   bool   `mapstructure:"verbose"`
	Plain     bool   `mapstructure:"plain"`
}

// flagKeys maps config keys to the command-line flags that set them.
var flagKeys = map[string]string{
	"extension": "ext",
	"recursive": "recursive",
	"dry_run":   "dry-run",
	"verbose":   "verbose",
	"plain":     "plain",
}

// RegisterFlags adds the mirror flags shared by the copy and info commands.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("ext", "e", "", "Only handle files whose name ends with this suffix (e.g. .jpg)")
	fs.BoolP("recursive", "r", false, "Descend into subdirectories")
	fs.BoolP("dry-run", "d", false, "List what would be written without touching the target")
	fs.Bool("plain", false, "Print plain progress lines instead of the interactive view")
}

// Load resolves the configuration from defaults, COPYDIR_* environment
// variables, flags and the SOURCE TARGET positional arguments, in increasing
// order of precedence.
func Load(flags *pflag.FlagSet, args []string) (Config, error) {
	v, err := newViper(flags)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if len(args) > 0 {
		cfg.SourceDir = args[0]
	}
	if len(args) > 1 {
		cfg.TargetDir = args[1]
	}
	cfg.SourceDir = strings.TrimSpace(cfg.SourceDir)
	cfg.TargetDir = strings.TrimSpace(cfg.TargetDir)

	if cfg.SourceDir == "" || cfg.TargetDir == "" {
		return Config{}, errors.New("source and target are required")
	}
	return cfg, nil
}

// Verbose resolves only the verbose setting, for callers that take no
// mirror arguments. Flags the set does not define are ignored.
func Verbose(flags *pflag.FlagSet) bool {
	v, err := newViper(flags)
	if err != nil {
		return false
	}
	return v.GetBool("verbose")
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("source_dir", "")
	v.SetDefault("target_dir", "")
	v.SetDefault("extension", "")
	v.SetDefault("recursive", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("verbose", false)
	v.SetDefault("plain", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}
