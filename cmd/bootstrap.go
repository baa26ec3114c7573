package cmd

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/rm-hull/godx"

	"github.com/train-tools/bestprice-api/internal"
)

// bootstrap initialises shared resources used by both the API server and the
// one-shot search command. It returns the upstream client and an aggregator
// configured from the environment.
func bootstrap() (internal.TrainPricesClient, internal.Aggregator, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	godx.GitVersion()
	godx.EnvironmentVars()
	godx.UserInfo()

	baseUrl := os.Getenv("BAHN_API_BASE_URL")
	if baseUrl == "" {
		baseUrl = internal.DefaultBaseURL
	}
	client := internal.NewTrainPricesClient(baseUrl)

	pacing := internal.DefaultPacing
	if ms := os.Getenv("PACING_MS"); ms != "" {
		parsed, err := strconv.Atoi(ms)
		if err != nil || parsed < 0 {
			return nil, nil, errors.Newf("invalid PACING_MS value: %q", ms)
		}
		pacing = time.Duration(parsed) * time.Millisecond
	}

	aggregator := internal.NewAggregator(client, pacing)

	return client, aggregator, nil
}
