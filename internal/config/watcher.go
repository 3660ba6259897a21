package config

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ConfigWatcher 监听配置文件变化并在重载成功后通知订阅者。
// 重载失败只记日志, 当前配置保持不变
type ConfigWatcher struct {
	viper     *viper.Viper
	logger    *logrus.Logger
	callbacks []func(*Config)
	mu        sync.Mutex
	current   atomic.Pointer[Config]
	stopped   atomic.Bool
}

// NewConfigWatcher 创建配置监听器
func NewConfigWatcher(cfg *Config, configPath string) *ConfigWatcher {
	v := viper.New()
	v.SetConfigFile(configPath)

	w := &ConfigWatcher{
		viper:  v,
		logger: logrus.StandardLogger(),
	}
	w.current.Store(cfg)
	return w
}

// OnConfigChange 注册配置变更回调, 必须在 Start 之前调用
func (w *ConfigWatcher) OnConfigChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start 读取配置文件并开始监听变化
func (w *ConfigWatcher) Start() error {
	if err := w.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	w.viper.OnConfigChange(func(e fsnotify.Event) {
		if w.stopped.Load() {
			return
		}
		w.reload()
	})
	w.viper.WatchConfig()

	return nil
}

func (w *ConfigWatcher) reload() {
	var newCfg Config
	if err := w.viper.Unmarshal(&newCfg); err != nil {
		w.logger.WithError(err).Warn("config reload failed, keeping previous config")
		return
	}

	w.current.Store(&newCfg)

	w.mu.Lock()
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, callback := range callbacks {
		callback(&newCfg)
	}
}

// Stop 停止配置监听
func (w *ConfigWatcher) Stop() {
	w.stopped.Store(true)
}

// GetConfig 获取当前生效的配置
func (w *ConfigWatcher) GetConfig() *Config {
	return w.current.Load()
}
