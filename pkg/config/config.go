// Package config는 viper 기반의 가벼운 설정 로더입니다.
// 설정 파일은 선택 사항이며 환경 변수가 항상 우선합니다.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 인터페이스는 설정 값에 액세스하기 위한 메서드를 정의합니다.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	IsSet(key string) bool
}

type viperConfig struct {
	v *viper.Viper
}

func (c *viperConfig) GetString(key string) string          { return c.v.GetString(key) }
func (c *viperConfig) GetInt(key string) int                { return c.v.GetInt(key) }
func (c *viperConfig) GetBool(key string) bool              { return c.v.GetBool(key) }
func (c *viperConfig) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }
func (c *viperConfig) IsSet(key string) bool                { return c.v.IsSet(key) }

// Options Load 옵션
type Options struct {
	// EnvPrefix 환경 변수 접두사 (예: RECONCILE → RECONCILE_BATCH_SIZE)
	EnvPrefix string
	// File 선택적 yaml 파일 경로. 비어 있으면 파일을 읽지 않습니다.
	File string
	// Defaults 기본값
	Defaults map[string]interface{}
}

// Load는 기본값, 설정 파일, 환경 변수 순서로 설정을 병합합니다.
func Load(opts Options) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range opts.Defaults {
		v.SetDefault(key, value)
	}

	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(strings.ToUpper(opts.EnvPrefix))
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("설정 파일 로드 실패: %w", err)
			}
		}
	}

	return &viperConfig{v: v}, nil
}
