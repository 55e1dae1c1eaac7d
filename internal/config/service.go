package config

import "time"

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

type RateLimitConfig struct {
	Backend string        `yaml:"backend"`
	Window  time.Duration `yaml:"window"`
}

// DodoConfig holds DodoPayments credentials.
type DodoConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	WebhookSecret string `yaml:"webhook_secret"`
	ReturnURL     string `yaml:"return_url"`
}

// ProductsConfig maps provider product ids to plans and credit packs.
type ProductsConfig struct {
	StandardMonthly string `yaml:"standard_monthly"`
	StandardYearly  string `yaml:"standard_yearly"`
	ProMonthly      string `yaml:"pro_monthly"`
	ProYearly       string `yaml:"pro_yearly"`
	CreditPack360   string `yaml:"credit_pack_360"`
	CreditPack720   string `yaml:"credit_pack_720"`
	CreditPack1440  string `yaml:"credit_pack_1440"`
	CreditPack2880  string `yaml:"credit_pack_2880"`
}

type GeneratorConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// ReconcileConfig controls the in-process sync sweep. Zero interval disables it.
type ReconcileConfig struct {
	Interval time.Duration `yaml:"interval"`
}
