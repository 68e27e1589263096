package main

import (
	"encoding/csv"
	"flag"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/nmorozova/platefeed/backend/config"
	"github.com/nmorozova/platefeed/backend/internal/database"
	"github.com/nmorozova/platefeed/backend/internal/models"
)

// Bulk-loads ingredient reference data from a CSV file of
// "name,measurement_unit" rows. Rows matching an existing name+unit pair
// are skipped, so the loader is safe to re-run.
func main() {
	path := flag.String("file", "data/ingredients.csv", "Path to the ingredients CSV file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("failed to open CSV file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	var loaded, skipped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse CSV")
		}

		name, unit := record[0], record[1]
		if name == "" || unit == "" {
			skipped++
			continue
		}

		var count int64
		if err := db.Model(&models.Ingredient{}).
			Where("name = ? AND measurement_unit = ?", name, unit).
			Count(&count).Error; err != nil {
			log.Fatal().Err(err).Str("name", name).Msg("failed to check ingredient")
		}
		if count > 0 {
			skipped++
			continue
		}

		if err := db.Create(&models.Ingredient{
			Name:            name,
			MeasurementUnit: unit,
		}).Error; err != nil {
			log.Fatal().Err(err).Str("name", name).Msg("failed to insert ingredient")
		}
		loaded++
	}

	log.Info().Int("loaded", loaded).Int("skipped", skipped).Msg("ingredient load complete")
}
