package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

type Config struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Cache   Cache   `yaml:"cache"`
	Signal  Signal  `yaml:"signal"`
	Trace   Trace   `yaml:"trace"`
	Log     Log     `yaml:"log"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	MaxUploadSize string `yaml:"maxUploadSize"` // echo BodyLimit syntax, e.g. 32M
	EnableCORS    bool   `yaml:"enableCORS"`
}

type Storage struct {
	PublicDir       string `yaml:"publicDir"`
	TextFile        string `yaml:"textFile"` // relative to PublicDir
	ImageDir        string `yaml:"imageDir"` // relative to PublicDir
	ValidateUploads bool   `yaml:"validateUploads"`
	Watch           bool   `yaml:"watch"`
}

type Cache struct {
	MemcachedAddr string `yaml:"memcachedAddr"` // empty: in-process cache
	TTLSeconds    int    `yaml:"ttlSeconds"`
}

type Signal struct {
	RedisAddr     string `yaml:"redisAddr"` // empty: in-process hub
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	Channel       string `yaml:"channel"`
}

type Trace struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"serviceName"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: Server{
			Listen:        ":8000",
			MaxUploadSize: "32M",
			EnableCORS:    true,
		},
		Storage: Storage{
			PublicDir:       "public",
			TextFile:        filepath.Join("text", "text.json"),
			ImageDir:        "images",
			ValidateUploads: true,
			Watch:           true,
		},
		Cache: Cache{
			TTLSeconds: 60,
		},
		Signal: Signal{
			Channel: "moodboard:events",
		},
		Trace: Trace{
			ServiceName: "moodboard",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	config := Default()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, errors.Wrap(err, "open config")
	}
	defer file.Close()

	err = yaml.NewDecoder(file).Decode(&config)
	if err == io.EOF {
		return config, nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "decode config %s", path)
	}

	return config, nil
}

// TextFilePath resolves the text store file on disk.
func (s Storage) TextFilePath() string {
	if filepath.IsAbs(s.TextFile) {
		return s.TextFile
	}
	return filepath.Join(s.PublicDir, s.TextFile)
}

// ImageDirPath resolves the image directory on disk.
func (s Storage) ImageDirPath() string {
	if filepath.IsAbs(s.ImageDir) {
		return s.ImageDir
	}
	return filepath.Join(s.PublicDir, s.ImageDir)
}
