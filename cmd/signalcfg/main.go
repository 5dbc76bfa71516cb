// signalcfg — показать итоговый конфиг: yaml из configs/ плюс env-оверрайды.
// Удобно проверять перед деплоем, что именно увидит бот.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

func main() {
	name := os.Getenv("CONFIG_FILE")
	if name == "" {
		name = "values_local.yaml"
	}

	v := viper.New()
	v.SetConfigFile("configs/" + name)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		panic(errors.Wrap(err, "read config"))
	}

	overrides := []string{
		"PUMP_THRESHOLD_PCT", "DUMP_THRESHOLD_PCT", "EXTREME_THRESHOLD_PCT",
		"MIN_VOLUME_24H", "EMA_PERIOD", "EMA_TIMEFRAMES",
		"PROXIMITY_PCT", "TOUCH_PCT", "EMA_COOLDOWN",
		"RESET_BAND_PCT", "REARM_INCREMENT_PCT", "RESET_STALL",
		"RECONCILE_PERIOD", "DISCOVERY_PERIOD",
		"RECONNECT_INITIAL", "RECONNECT_MAX", "SUBSCRIBE_DELAY", "PING_INTERVAL",
	}
	for _, key := range overrides {
		if val := os.Getenv(key); val != "" {
			v.Set(key, val)
		}
	}

	bs, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		panic(errors.Wrap(err, "marshal config to yaml"))
	}
	fmt.Println(string(bs))
}
