package db

// Configuration settings for the Postgres/PostGIS mirror
type Configuration struct {
	Host     string `toml:"host" default:"localhost" comment:"Postgres host"`
	Port     int    `toml:"port" default:"5432" comment:"Postgres port"`
	User     string `toml:"user" default:"postgres" comment:"Postgres user"`
	Password string `toml:"password" default:"mysecretpassword" comment:"Postgres password"`
	Dbname   string `toml:"dbName" default:"sondes" comment:"Postgres dbName, PostGIS enabled"`
	Sslmode  string `toml:"sslmode" default:"disable" comment:"lib/pq sslmode: disable, require, verify-ca, verify-full"`
}
