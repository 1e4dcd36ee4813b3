package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config は config.yaml と環境変数 (INFITRACKER_*) から読み込む設定
type Config struct {
	Process struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"process"`
	Hook struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"hook"`
	Poll struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"poll"`
	Probe struct {
		Marker        string        `mapstructure:"marker"`
		FirstUnlockID int32         `mapstructure:"first_unlock_id"`
		SongID        string        `mapstructure:"song_id"`
		Difficulty    string        `mapstructure:"difficulty"`
		MinNotes      int           `mapstructure:"min_notes"`
		RetryDelay    time.Duration `mapstructure:"retry_delay"`
	} `mapstructure:"probe"`
	Catalog struct {
		MaxEntries int `mapstructure:"max_entries"`
	} `mapstructure:"catalog"`
	Unlock struct {
		PassLimit int `mapstructure:"pass_limit"`
	} `mapstructure:"unlock"`
	Files struct {
		Offsets       string `mapstructure:"offsets"`
		EncodingFixes string `mapstructure:"encoding_fixes"`
		CustomTypes   string `mapstructure:"custom_types"`
		Tracker       string `mapstructure:"tracker"`
		TrackerTSV    string `mapstructure:"tracker_tsv"`
		UnlockDB      string `mapstructure:"unlock_db"`
		CurrentSong   string `mapstructure:"current_song"`
		SessionDir    string `mapstructure:"session_dir"`
		SongList      string `mapstructure:"song_list"`
		History       string `mapstructure:"history"`
		Log           string `mapstructure:"log"`
	} `mapstructure:"files"`
	Remote struct {
		Enabled   bool          `mapstructure:"enabled"`
		Server    string        `mapstructure:"server"`
		APIKey    string        `mapstructure:"api_key"`
		QueueSize int           `mapstructure:"queue_size"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"remote"`
	Update struct {
		Enabled bool          `mapstructure:"enabled"`
		Server  string        `mapstructure:"server"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"update"`
	Output struct {
		SongList    bool `mapstructure:"songlist"`
		CurrentSong bool `mapstructure:"current_song"`
		Session     bool `mapstructure:"session"`
		History     bool `mapstructure:"history"`
	} `mapstructure:"output"`
	Metrics struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"metrics"`
}

// Load は設定ファイルと環境変数を読み込みます。
// path が空の場合はカレントディレクトリの config.yaml を探し、見つからなければ既定値を使います
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INFITRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 秘密情報は環境変数だけで渡せるようにする
	v.BindEnv("remote.server")
	v.BindEnv("remote.api_key")

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeConfig, err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("process.name", "bm2dx.exe")
	v.SetDefault("hook.interval", 2*time.Second)
	v.SetDefault("poll.interval", 2*time.Second)

	v.SetDefault("probe.marker", "5.1.1.")
	v.SetDefault("probe.first_unlock_id", 1000)
	v.SetDefault("probe.song_id", "80003")
	v.SetDefault("probe.difficulty", "SPA")
	v.SetDefault("probe.min_notes", 10)
	v.SetDefault("probe.retry_delay", 5*time.Second)

	v.SetDefault("catalog.max_entries", 10000)
	v.SetDefault("unlock.pass_limit", 32)

	v.SetDefault("files.offsets", "offsets.txt")
	v.SetDefault("files.encoding_fixes", "encodingfixes.txt")
	v.SetDefault("files.custom_types", "customtypes.txt")
	v.SetDefault("files.tracker", "tracker.db")
	v.SetDefault("files.tracker_tsv", "tracker.tsv")
	v.SetDefault("files.unlock_db", "unlockdb")
	v.SetDefault("files.current_song", "currentsong.txt")
	v.SetDefault("files.session_dir", "sessions")
	v.SetDefault("files.song_list", "songs.csv")
	v.SetDefault("files.history", "history.sqlite")
	v.SetDefault("files.log", "log.txt")

	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.server", "")
	v.SetDefault("remote.api_key", "")
	v.SetDefault("remote.queue_size", 64)
	v.SetDefault("remote.timeout", 10*time.Second)

	v.SetDefault("update.enabled", false)
	v.SetDefault("update.server", "")
	v.SetDefault("update.timeout", 10*time.Second)

	v.SetDefault("output.songlist", false)
	v.SetDefault("output.current_song", true)
	v.SetDefault("output.session", true)
	v.SetDefault("output.history", true)

	v.SetDefault("metrics.addr", "")
}
