package pkoptions

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/validation"
)

// Application is one dosing event. Times are in minutes, doses in mg.
type Application struct {
	Name         string  `yaml:"name" validate:"required"`
	Molecule     string  `yaml:"molecule" validate:"required"`
	StartTime    float64 `yaml:"start_time" validate:"gte=0"`
	Dose         float64 `yaml:"dose" validate:"gte=0"`
	InfusionTime float64 `yaml:"infusion_time" validate:"gte=0"`
}

// Reaction converts educts into products
type Reaction struct {
	Name     string   `yaml:"name" validate:"required"`
	Educts   []string `yaml:"educts"`
	Products []string `yaml:"products"`
}

// Simulation is the subset of a simulation needed to derive PK options
type Simulation struct {
	Name         string        `yaml:"name" validate:"required"`
	EndTime      float64       `yaml:"end_time" validate:"gt=0"`
	BodyWeight   float64       `yaml:"body_weight" validate:"gt=0"`
	Applications []Application `yaml:"applications" validate:"dive"`
	Reactions    []Reaction    `yaml:"reactions" validate:"dive"`
}

// DosingInterval is the time window between two consecutive applications
type DosingInterval struct {
	Start                 float64 `json:"start"`
	End                   float64 `json:"end"`
	DrugMassPerBodyWeight float64 `json:"drug_mass_per_body_weight"`
}

// Options configure the PK calculation of one molecule
type Options struct {
	Molecule                   string           `json:"molecule"`
	ApplyingMolecule           string           `json:"applying_molecule,omitempty"`
	TotalDrugMassPerBodyWeight float64          `json:"total_drug_mass_per_body_weight"`
	InfusionTime               float64          `json:"infusion_time"`
	DosingIntervals            []DosingInterval `json:"dosing_intervals"`
}

// SingleDosing reports whether the molecule is applied at most once
func (o Options) SingleDosing() bool { return len(o.DosingIntervals) <= 1 }

// LoadSimulation reads a YAML simulation description
func LoadSimulation(r io.Reader) (*Simulation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read simulation", err)
	}
	var sim Simulation
	if err := yaml.Unmarshal(data, &sim); err != nil {
		return nil, apperrors.NewParsingError("failed to parse simulation", err)
	}
	if err := validation.Default().Struct(sim); err != nil {
		return nil, err
	}
	return &sim, nil
}

// LoadSimulationFile reads the YAML simulation description at path
func LoadSimulationFile(path string) (*Simulation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("simulation file %s", path))
	}
	defer file.Close()
	return LoadSimulation(file)
}

// Factory derives PK calculation options from a simulation
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger.With(slog.String("component", "pk_options"))}
}

// CreateFor builds the options for molecule. Applications starting after
// the simulation end are ignored.
func (f *Factory) CreateFor(sim *Simulation, molecule string) Options {
	opts := Options{Molecule: molecule, InfusionTime: math.NaN()}

	apps, applying := ApplicationsForMolecule(sim, molecule)
	opts.ApplyingMolecule = applying

	var used []Application
	for _, app := range apps {
		if app.StartTime <= sim.EndTime {
			used = append(used, app)
		}
	}
	sort.SliceStable(used, func(i, j int) bool { return used[i].StartTime < used[j].StartTime })

	for i, app := range used {
		end := sim.EndTime
		if i+1 < len(used) {
			end = used[i+1].StartTime
		}
		perBodyWeight := app.Dose / sim.BodyWeight
		opts.DosingIntervals = append(opts.DosingIntervals, DosingInterval{
			Start:                 app.StartTime,
			End:                   end,
			DrugMassPerBodyWeight: perBodyWeight,
		})
		opts.TotalDrugMassPerBodyWeight += perBodyWeight
	}

	if len(used) == 1 {
		opts.InfusionTime = used[0].InfusionTime
	}

	f.logger.Debug("pk options created",
		slog.String("simulation", sim.Name),
		slog.String("molecule", molecule),
		slog.String("applying_molecule", applying),
		slog.Int("dosing_intervals", len(opts.DosingIntervals)))
	return opts
}

// ApplicationsForMolecule returns the applications that administer
// molecule, directly or through a chain of reactions, together with the
// molecule actually applied. The chain is followed backwards only while
// exactly one single-educt reaction produces the current molecule alone.
func ApplicationsForMolecule(sim *Simulation, molecule string) ([]Application, string) {
	visited := map[string]bool{}
	current := molecule
	for !visited[current] {
		visited[current] = true

		if apps := directApplications(sim, current); len(apps) > 0 {
			return apps, current
		}

		educts := uniqueEducts(sim, current)
		if len(educts) != 1 {
			return nil, ""
		}
		current = educts[0]
	}
	return nil, ""
}

func directApplications(sim *Simulation, molecule string) []Application {
	var apps []Application
	for _, app := range sim.Applications {
		if app.Molecule == molecule {
			apps = append(apps, app)
		}
	}
	return apps
}

func uniqueEducts(sim *Simulation, product string) []string {
	seen := map[string]bool{}
	var educts []string
	for _, r := range sim.Reactions {
		if len(r.Products) != 1 || r.Products[0] != product || len(r.Educts) != 1 {
			continue
		}
		if e := r.Educts[0]; !seen[e] {
			seen[e] = true
			educts = append(educts, e)
		}
	}
	return educts
}
