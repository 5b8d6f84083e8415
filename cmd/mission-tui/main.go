// Command mission-tui is an interactive mission composer: an
// operator builds a waypoint list for a candidate drone mission, the
// tool runs it through the deconfliction engine against the
// configured catalogue (database if configured, else the static
// fixture), and renders the mission's path and any reported
// conflicts on an ASCII top-down plot.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aerosentry/deconfliction/internal/db"
	"github.com/aerosentry/deconfliction/internal/engine"
	"github.com/aerosentry/deconfliction/internal/httpapi"
	"github.com/aerosentry/deconfliction/pkg/config"
	"github.com/aerosentry/deconfliction/pkg/mission"
)

const (
	plotWidth  = 70
	plotHeight = 26
)

// field identifies which input box the composer form is currently
// collecting text into.
type field int

const (
	fieldDroneID field = iota
	fieldWaypoint
	fieldStartTime
	fieldEndTime
	fieldSpeed
	fieldSafetyBuffer
	fieldDone
)

type model struct {
	cfg      *config.Config
	eng      *engine.Engine
	others   []*mission.Mission

	field       field
	input       string
	draft       mission.Mission
	err         error
	conflicts   []mission.Conflict
	analyzed    bool

	width, height int
}

func initialModel(cfg *config.Config, eng *engine.Engine, others []*mission.Mission) model {
	return model{
		cfg:    cfg,
		eng:    eng,
		others: others,
		field:  fieldDroneID,
		draft: mission.Mission{
			Speed:        5.0,
			SafetyBuffer: 10.0,
		},
		width:  100,
		height: 40,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submitField()
		case "backspace":
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
			return m, nil
		case "q":
			if m.field == fieldDone {
				return m, tea.Quit
			}
		}
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		}
	}
	return m, nil
}

// submitField advances the composer form one step, parsing m.input
// into the draft mission and clearing the box for the next field.
func (m model) submitField() (tea.Model, tea.Cmd) {
	m.err = nil
	switch m.field {
	case fieldDroneID:
		if m.input == "" {
			m.err = fmt.Errorf("drone id must not be empty")
			return m, nil
		}
		m.draft.DroneID = m.input
		m.field = fieldWaypoint

	case fieldWaypoint:
		if m.input == "done" || m.input == "" {
			if len(m.draft.Waypoints) == 0 {
				m.err = fmt.Errorf("at least one waypoint is required")
				return m, nil
			}
			m.field = fieldStartTime
			m.input = ""
			return m, nil
		}
		wp, err := parseWaypoint(m.input)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.draft.Waypoints = append(m.draft.Waypoints, wp)
		m.input = ""
		return m, nil

	case fieldStartTime:
		v, err := strconv.ParseFloat(m.input, 64)
		if err != nil {
			m.err = fmt.Errorf("start time must be a number")
			return m, nil
		}
		m.draft.StartTime = v
		m.field = fieldEndTime

	case fieldEndTime:
		v, err := strconv.ParseFloat(m.input, 64)
		if err != nil {
			m.err = fmt.Errorf("end time must be a number")
			return m, nil
		}
		m.draft.EndTime = v
		m.field = fieldSpeed

	case fieldSpeed:
		v, err := strconv.ParseFloat(m.input, 64)
		if err != nil {
			m.err = fmt.Errorf("speed must be a number")
			return m, nil
		}
		m.draft.Speed = v
		m.field = fieldSafetyBuffer

	case fieldSafetyBuffer:
		v, err := strconv.ParseFloat(m.input, 64)
		if err != nil {
			m.err = fmt.Errorf("safety buffer must be a number")
			return m, nil
		}
		m.draft.SafetyBuffer = v

		if err := m.draft.Validate(); err != nil {
			m.err = err
			return m, nil
		}
		m.conflicts = m.eng.DetectConflicts(&m.draft, m.others)
		m.analyzed = true
		m.field = fieldDone
	}
	m.input = ""
	return m, nil
}

// parseWaypoint parses "x,y,z" text input into a Waypoint.
func parseWaypoint(s string) (mission.Waypoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mission.Waypoint{}, fmt.Errorf("waypoint must be x,y,z")
	}
	coords := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mission.Waypoint{}, fmt.Errorf("invalid coordinate %q", p)
		}
		coords[i] = v
	}
	return mission.Waypoint{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("deconfliction mission composer") + "\n\n")

	if m.field != fieldDone {
		b.WriteString(m.renderForm())
	} else {
		b.WriteString(m.renderResult())
	}

	if m.err != nil {
		b.WriteString("\n" + errStyle.Render("error: "+m.err.Error()))
	}

	return b.String()
}

func (m model) renderForm() string {
	var b strings.Builder
	prompt := ""
	switch m.field {
	case fieldDroneID:
		prompt = "drone id"
	case fieldWaypoint:
		prompt = fmt.Sprintf("waypoint %d (x,y,z), or \"done\"", len(m.draft.Waypoints)+1)
	case fieldStartTime:
		prompt = "start time (s)"
	case fieldEndTime:
		prompt = "end time (s)"
	case fieldSpeed:
		prompt = "speed (m/s)"
	case fieldSafetyBuffer:
		prompt = "safety buffer (m)"
	}

	if len(m.draft.Waypoints) > 0 {
		b.WriteString(labelStyle.Render(fmt.Sprintf("waypoints so far: %d", len(m.draft.Waypoints))) + "\n")
	}
	b.WriteString(labelStyle.Render(prompt) + ": " + m.input + "█\n")
	return b.String()
}

func (m model) renderResult() string {
	var b strings.Builder
	if len(m.conflicts) == 0 {
		b.WriteString(okStyle.Render("clear — no conflicts detected") + "\n\n")
	} else {
		b.WriteString(errStyle.Render(fmt.Sprintf("conflict — %d detected", len(m.conflicts))) + "\n\n")
		for _, c := range m.conflicts {
			b.WriteString(fmt.Sprintf("  t=%.1f  (%.1f,%.1f,%.1f)  %s/%s  d=%.2f\n",
				c.Time, c.Location.X, c.Location.Y, c.Location.Z,
				c.InvolvedFlights[0], c.InvolvedFlights[1], c.Distance))
		}
		b.WriteString("\n")
	}

	b.WriteString(boxStyle.Render(renderPlot(&m.draft, m.others, m.conflicts)) + "\n")
	b.WriteString(labelStyle.Render("press q to quit") + "\n")
	return b.String()
}

func nowSeconds() float64 {
	return float64(time.Now().Unix())
}

func main() {
	configPath := "configs/config.json"
	fixturePath := "data/sample_simulated_flights.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var others []*mission.Mission
	if cfg.Database.Driver != "" {
		if database, err := db.Connect(cfg.Database); err == nil {
			defer database.Close()
			repo := db.NewFlightRepository(database.DB)
			if rows, err := repo.ListActive(context.Background(), nowSeconds()); err == nil {
				for _, row := range rows {
					others = append(others, row.ToMission())
				}
			} else {
				log.Printf("failed to load scheduled flights: %v", err)
			}
		} else {
			log.Printf("database unavailable, falling back to fixture: %v", err)
		}
	}
	if others == nil {
		others = httpapi.LoadFixture(fixturePath)
	}

	eng := engine.New(cfg.Engine.GridSize)

	p := tea.NewProgram(initialModel(cfg, eng, others))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running mission-tui: %v\n", err)
		os.Exit(1)
	}
}
