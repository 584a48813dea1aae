package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	RPC      MRPCConfig     `yaml:"rpc"`
	Feed     MFeedConfig    `yaml:"feed"`
	Ledger   MLedgerConfig  `yaml:"ledger"`
	Storage  MStorageConfig `yaml:"storage"`
}

type MRPCConfig struct {
	Endpoint       string `yaml:"endpoint"`
	PriceFeed      string `yaml:"price_feed"`
	Token          string `yaml:"token"`
	RequestTimeout int    `yaml:"timeout"`
}

type MFeedConfig struct {
	IntervalSeconds  int `yaml:"interval_seconds"`
	CountdownSeconds int `yaml:"countdown_seconds"`
}

type MLedgerConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}
