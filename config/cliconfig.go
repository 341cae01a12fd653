package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/fsnotify/fsnotify"
)

var (
	errNoFileToWatch       = errors.New("no file to watch")
	errTruncatedConfigFile = errors.New("truncated config file")
)

// CLIConfig represents the Command Line Args config
type CLIConfig struct {
	ConfigPath             string
	StopOnConfigChange     bool
	DoNotWatchConfigChange bool
	callbacks              []func()
	watcherStarted         bool
	watcherStarterMutex    sync.Mutex
	watcher                *fsnotify.Watcher
}

// NotifyOnConfigFileChange registers a callback function for changes to ConfigPath; it calls the `callback` when a change is detected
func (conf *CLIConfig) NotifyOnConfigFileChange(callback func()) {
	if conf.DoNotWatchConfigChange {
		return
	}
	conf.callbacks = append(conf.callbacks, callback)
	if !conf.watcherStarted {
		conf.startConfigWatcher()
	}
}

// IsConfigWatcherStarted returns whether config watcher is running
func (conf *CLIConfig) IsConfigWatcherStarted() bool {
	return conf.watcherStarted
}

func (conf *CLIConfig) startConfigWatcher() {
	conf.watcherStarterMutex.Lock()
	defer conf.watcherStarterMutex.Unlock()
	conf.watchFileIfExists()
	conf.watcherStarted = true
}

// StopWatcher stops any watcher if started for CLI ConfigPath file change
func (conf *CLIConfig) StopWatcher() {
	if conf.watcherStarted && conf.watcher != nil {
		log.Print("closing watcher")
		conf.watcher.Close()
	}
}

func (conf *CLIConfig) watchFileIfExists() {
	watcher, err := createNewWatcher()
	if err != nil {
		log.Error().Err(err).Msg("could not setup watcher")
		return
	}
	conf.watcher = watcher
	filename, err := getFileToWatch(conf.ConfigPath)
	if err != nil {
		return
	}
	// watch the entire directory to pick up renames/atomic saves in a cross-platform way
	configFile := filepath.Clean(filename)
	configDir, _ := filepath.Split(configFile)
	filehash, err := getFileHash(configFile)
	if err != nil {
		log.Error().Err(err).Msg("could not generate original config file hash")
		return
	}
	watcher.Add(configDir)
	go conf.watchWorker(watcher, configFile, filehash)
}

func (conf *CLIConfig) watchWorker(watcher *fsnotify.Watcher, configFile, filehash string) {
	const writeOrCreateMask = fsnotify.Write | fsnotify.Create
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != configFile {
				continue
			}
			if event.Op&fsnotify.Remove != 0 {
				return
			}
			if event.Op&writeOrCreateMask != 0 {
				filehash = conf.callCallbacksIfChanged(configFile, filehash)
			}
		case err, ok := <-watcher.Errors:
			if ok {
				log.Warn().Err(err).Msg("watcher error")
			}
			return
		}
	}
}

func (conf *CLIConfig) callCallbacksIfChanged(configFile, oldHash string) string {
	newHash, err := getFileHash(configFile)
	if err != nil {
		if err == errTruncatedConfigFile {
			log.Warn().Err(err).Msg("truncation of config file not expected")
		} else {
			log.Error().Err(err).Msg("could not generate file hash on change")
		}
		return oldHash
	}
	if newHash != oldHash {
		for _, callback := range conf.callbacks {
			go callback()
		}
	}
	return newHash
}

var (
	createNewWatcher = func() (*fsnotify.Watcher, error) {
		return fsnotify.NewWatcher()
	}

	getFileToWatch = func(configPath string) (filename string, err error) {
		filename = configPath
		fileInfo, err := os.Stat(filename)
		if err != nil || !fileInfo.Mode().IsRegular() {
			filename = ConfigFilename
			fileInfo, err = os.Stat(filename)
			if err != nil || !fileInfo.Mode().IsRegular() {
				log.Warn().Err(errNoFileToWatch).Msg("could not find any file to watch")
				return "", errNoFileToWatch
			}
		}
		return filename, nil
	}

	getFileHash = func(filePath string) (hashHex string, err error) {
		file, err := os.Open(filePath)
		if err != nil {
			return "", err
		}
		defer file.Close()
		hasher := sha256.New()
		size, err := io.Copy(hasher, file)
		if err != nil {
			return "", err
		}
		if size == 0 {
			return "", errTruncatedConfigFile
		}
		return hex.EncodeToString(hasher.Sum(nil)), nil
	}
)
