package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis   `yaml:"redis"`
	Discord    Discord `yaml:"discord"`
	Game       Game    `yaml:"game"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	SessionTTL time.Duration `yaml:"session-ttl" env-default:"24h"`
}

// Discord is optional: the adapter only starts when Token is set.
type Discord struct {
	Token         string `yaml:"token" env:"DISCORD_TOKEN"`
	ApplicationID string `yaml:"application-id" env:"DISCORD_APPLICATION_ID"`
	GuildID       string `yaml:"guild-id" env:"DISCORD_GUILD_ID"`
}

type Game struct {
	HouseID            string        `yaml:"house-id" env-default:"house"`
	MoveTimeout        time.Duration `yaml:"move-timeout" env-default:"2m"`
	RecordHouseResults bool          `yaml:"record-house-results"`
	ShuffleSeats       bool          `yaml:"shuffle-seats"`
	ConnectFour        Variant       `yaml:"connect-four"`
	TicTacToe          Variant       `yaml:"tic-tac-toe"`
}

// Variant holds the board shape and the search depth of one game kind.
// Zero values are filled in by the variant package.
type Variant struct {
	Rows        int `yaml:"rows"`
	Cols        int `yaml:"cols"`
	WinLength   int `yaml:"win-length"`
	SearchDepth int `yaml:"search-depth"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Discord) Enabled() bool {
	return that.Token != ""
}
