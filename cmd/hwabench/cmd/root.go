package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hwabench/hwabench/internal/bench"
	"github.com/hwabench/hwabench/pkg/logging"
)

var cfgFile string

// rootCmd represents the base command: running the benchmark itself.
var rootCmd = &cobra.Command{
	Use:   "hwabench",
	Short: "CPU and GPU transcoding benchmark",
	Long: `hwabench runs a series of standardized transcoding tests to determine how
video transcoding will perform on this hardware. For every available
acceleration backend (software, NVENC, QSV, AMF) it searches for the
maximum number of simultaneous streams that still transcode at realtime
speed or faster, and reports the results together with anonymized system
hardware information as one JSON document.

To perform the test, four standardized test files are downloaded into the
videos directory and cached there for subsequent runs. Obtaining hardware
information requires the "lshw" program.

The benchmark is stressful and long-running; run it on an otherwise idle
system or the results will not be representative.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBenchmark,
}

// Execute runs the CLI and maps fatal errors onto distinct exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(bench.ExitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hwabench/config.yaml)")
	rootCmd.Flags().String("ffmpeg", "ffmpeg", "path to the transcoder binary")
	rootCmd.Flags().String("videos", "", "directory to cache test video files (required)")
	rootCmd.Flags().StringP("output", "o", "-", "path to the output JSON file ('-' for stdout)")
	rootCmd.Flags().Int("gpu", -1, "GPU index to test on a multi-GPU system")
	rootCmd.Flags().Bool("debug", false, "enable additional debug output")
	rootCmd.Flags().String("scale", "720p", "target condition: 2160p, 1080p or 720p")
	rootCmd.Flags().Int("max-streams", 64, "upper bound for the stream-count search")
	rootCmd.Flags().String("manifest", "", "alternate asset manifest (YAML)")
	rootCmd.Flags().String("textfile", "", "write Prometheus textfile-collector metrics to this path")
	rootCmd.Flags().String("submit", "", "POST the report JSON to this URL after writing it")

	viper.BindPFlag("ffmpeg", rootCmd.Flags().Lookup("ffmpeg"))
	viper.BindPFlag("videos", rootCmd.Flags().Lookup("videos"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("gpu", rootCmd.Flags().Lookup("gpu"))
	viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))
	viper.BindPFlag("scale", rootCmd.Flags().Lookup("scale"))
	viper.BindPFlag("max_streams", rootCmd.Flags().Lookup("max-streams"))
	viper.BindPFlag("manifest", rootCmd.Flags().Lookup("manifest"))
	viper.BindPFlag("textfile", rootCmd.Flags().Lookup("textfile"))
	viper.BindPFlag("submit", rootCmd.Flags().Lookup("submit"))
}

// initConfig reads in config file and HWABENCH_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".hwabench"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("HWABENCH")
	viper.AutomaticEnv()

	// Missing config file is fine; a broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	opts := bench.DefaultOptions()
	opts.FFmpegPath = expand(viper.GetString("ffmpeg"))
	opts.VideosDir = expand(viper.GetString("videos"))
	opts.OutputPath = expand(viper.GetString("output"))
	opts.GPUIndex = viper.GetInt("gpu")
	opts.Debug = viper.GetBool("debug")
	opts.Scale = viper.GetString("scale")
	opts.MaxStreams = viper.GetInt("max_streams")
	opts.ManifestPath = expand(viper.GetString("manifest"))
	opts.TextfilePath = expand(viper.GetString("textfile"))
	opts.SubmitURL = viper.GetString("submit")

	if opts.VideosDir == "" {
		return fmt.Errorf("--videos is required: the test corpus needs a cache directory")
	}
	if opts.MaxStreams < 1 {
		return fmt.Errorf("--max-streams must be at least 1")
	}

	level := logging.INFO
	if opts.Debug {
		level = logging.DEBUG
	}
	log := logging.NewLogger(level)

	return bench.Run(cmd.Context(), opts, log)
}

// expand resolves a leading ~ to the user's home directory.
func expand(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
