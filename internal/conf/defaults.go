// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "lawglot")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/lawglot.log")
	viper.SetDefault("main.log.maxsizemb", 100)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxagedays", 28)

	viper.SetDefault("lawapi.searchurl", "https://www.law.go.kr/DRF/lawSearch.do")
	viper.SetDefault("lawapi.serviceurl", "https://www.law.go.kr/DRF/lawService.do")
	viper.SetDefault("lawapi.timeout", 6*time.Second)
	viper.SetDefault("lawapi.sleep", 300*time.Millisecond)
	viper.SetDefault("lawapi.maxretries", 3)
	viper.SetDefault("lawapi.retrydelay", 500*time.Millisecond)
	viper.SetDefault("lawapi.cachettl", 6*time.Hour)

	viper.SetDefault("crawl.display", 100)
	viper.SetDefault("crawl.flushevery", 200)
	viper.SetDefault("crawl.maxterms", 0)

	viper.SetDefault("resolve.topk", 8)
	viper.SetDefault("resolve.dailyperkeyword", 3)
	viper.SetDefault("resolve.legalperdaily", 5)
	viper.SetDefault("resolve.articlepreview", 2)
	viper.SetDefault("resolve.summarylimit", 160)
	viper.SetDefault("resolve.budget", 20*time.Second)
	viper.SetDefault("resolve.concurrency", 4)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "data/lawglot.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "lawglot")
	viper.SetDefault("output.mysql.password", "lawglot")
	viper.SetDefault("output.mysql.database", "lawglot")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("webserver.port", "8080")
}
