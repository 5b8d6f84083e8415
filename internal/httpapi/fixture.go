package httpapi

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/aerosentry/deconfliction/pkg/mission"
)

// nowSeconds returns the current time as the Unix-epoch-seconds
// float the engine's time fields are expressed in (spec.md §3's
// start_time/end_time are plain floats, not wall-clock types).
func nowSeconds() float64 {
	return float64(time.Now().Unix())
}

// LoadFixture reads the static JSON fixture of simulated flights from
// path. Absence of the file yields an empty list and a logged
// warning rather than an error, per spec.md §6: "absence yields an
// empty list and a logged warning (non-fatal)". This is the original
// engine's bootstrap/seed path, still supported per SPEC_FULL.md §4.8
// as the fallback when no database is configured.
func LoadFixture(path string) []*mission.Mission {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("failed to load simulated-flights fixture %s, continuing with an empty catalogue: %v", path, err)
		return nil
	}

	var wire []missionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		log.Printf("failed to parse simulated-flights fixture %s, continuing with an empty catalogue: %v", path, err)
		return nil
	}

	flights := make([]*mission.Mission, len(wire))
	for i, w := range wire {
		flights[i] = w.toMission()
	}
	return flights
}
