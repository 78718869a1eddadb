package config

type Seed struct {
	// CSVPath points at the beer catalog export loaded on first boot.
	CSVPath string `env:"SEED_CSV_PATH" envDefault:"csvdata/beers.csv"`
}
