// Command seed populates a running service with synthetic athletes and
// observations, for local development and load checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// Default configuration constants.
const (
	defaultUsers        = 200
	defaultObservations = 5
	defaultTimeout      = 10 * time.Second
)

// metricSpec pairs a metric with a plausible value range.
type metricSpec struct {
	id             string
	classID        string
	higherIsBetter bool
	min, max       float64
}

var catalog = []metricSpec{
	{id: "sprint_40m", classID: "speed", higherIsBetter: false, min: 4.2, max: 7.5},
	{id: "shuttle_5_10_5", classID: "speed", higherIsBetter: false, min: 4.0, max: 6.5},
	{id: "back_squat_kg", classID: "strength", higherIsBetter: true, min: 40, max: 260},
	{id: "deadlift_kg", classID: "strength", higherIsBetter: true, min: 60, max: 320},
	{id: "run_5k_s", classID: "endurance", higherIsBetter: false, min: 900, max: 2400},
	{id: "row_2k_s", classID: "endurance", higherIsBetter: false, min: 380, max: 620},
	{id: "vertical_jump_cm", classID: "power", higherIsBetter: true, min: 25, max: 95},
}

var gyms = []string{"ironworks", "summit", "flagship", "eastside"}
var states = []string{"CA", "TX", "NY", "WA", "CO"}
var cities = []string{"Austin", "Denver", "Oakland", "Seattle", "Brooklyn"}

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9090", "Base URL of the service")
		users   = flag.Int("users", defaultUsers, "Number of athletes to create")
		perUser = flag.Int("observations", defaultObservations, "Counted observations per athlete")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	ctx := context.Background()
	client := &http.Client{Timeout: *timeout}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := run(ctx, client, rng, *baseURL, *users, *perUser); err != nil {
		fmt.Fprintln(os.Stderr, "seed failed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *http.Client, rng *rand.Rand, baseURL string, users, perUser int) error {
	for _, spec := range catalog {
		def := map[string]any{
			"class_id":         spec.classID,
			"higher_is_better": spec.higherIsBetter,
		}
		if err := put(ctx, client, baseURL+"/metrics/"+spec.id, def); err != nil {
			return fmt.Errorf("metric %s: %w", spec.id, err)
		}
	}

	for i := 0; i < users; i++ {
		id := uuid.NewString()
		profile := map[string]any{
			"display_name":     fmt.Sprintf("athlete-%04d", i),
			"date_of_birth":    randomBirthDate(rng),
			"gender":           pick(rng, []string{"female", "male"}),
			"height_cm":        150 + rng.Float64()*50,
			"weight_kg":        50 + rng.Float64()*60,
			"primary_class_id": pick(rng, []string{"speed", "strength", "endurance", "power"}),
			"gym_id":           pick(rng, gyms),
			"state":            pick(rng, states),
			"city":             pick(rng, cities),
		}
		if err := put(ctx, client, baseURL+"/users/"+id, profile); err != nil {
			return fmt.Errorf("user %d: %w", i, err)
		}

		for j := 0; j < perUser; j++ {
			spec := catalog[rng.Intn(len(catalog))]
			obs := map[string]any{
				"user_id":             id,
				"metric_id":           spec.id,
				"value":               spec.min + rng.Float64()*(spec.max-spec.min),
				"included_in_ranking": true,
				"ts":                  time.Now().Format(time.RFC3339),
			}
			if err := post(ctx, client, baseURL+"/observations", obs); err != nil {
				return fmt.Errorf("observation %d/%d: %w", i, j, err)
			}
		}
	}
	fmt.Printf("seeded %d athletes with %d observations each\n", users, perUser)
	return nil
}

func randomBirthDate(rng *rand.Rand) string {
	age := 16 + rng.Intn(40)
	dob := time.Now().AddDate(-age, -rng.Intn(12), -rng.Intn(28))
	return dob.Format("2006-01-02")
}

func pick(rng *rand.Rand, opts []string) string {
	return opts[rng.Intn(len(opts))]
}

func put(ctx context.Context, client *http.Client, url string, body any) error {
	return send(ctx, client, http.MethodPut, url, body)
}

func post(ctx context.Context, client *http.Client, url string, body any) error {
	return send(ctx, client, http.MethodPost, url, body)
}

func send(ctx context.Context, client *http.Client, method, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode)
	}
	return nil
}
