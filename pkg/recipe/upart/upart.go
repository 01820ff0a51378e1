// Package upart provides the UParT jet-tagging evaluation recipes.
//
// Two recipes are registered: "upart-standalone" for production-style
// evaluation over remote MiniAOD inputs, and "upart-minimal" for a quick
// verbose run over a handful of events.
package upart

import (
	"fmt"

	"github.com/3leaps/gojobcfg/pkg/conditions"
	"github.com/3leaps/gojobcfg/pkg/job"
	"github.com/3leaps/gojobcfg/pkg/module"
	"github.com/3leaps/gojobcfg/pkg/param"
	"github.com/3leaps/gojobcfg/pkg/recipe"
)

// Recipe names.
const (
	StandaloneName = "upart-standalone"
	MinimalName    = "upart-minimal"
)

// Module and service type names understood by the execution host.
const (
	EvaluatorType     = "UParTEvaluator"
	EvaluatorLabel    = "upartEvaluator"
	MessageLoggerType = "MessageLogger"
	FileServiceType   = "TFileService"
)

// Defaults are the recipe-specific parameter defaults.
type Defaults struct {
	Process      string
	InputFiles   []string
	OutputFile   string
	MaxEvents    int
	ModelPath    string
	JetPtMin     float64
	JetEtaMax    float64
	GlobalTag    string
	ReportEvery  int
	LogThreshold string
	Fragments    []string
}

// DefaultModelPath is the bundled PUPPI model location.
const DefaultModelPath = "RecoBTag/Combined/data/UParTAK4/PUPPI/V01/modelfile/model.onnx"

// DefaultGlobalTag is the Run 3 2022 MC global tag.
const DefaultGlobalTag = "130X_mcRun3_2022_realistic_v5"

// LogThresholds are the accepted MessageLogger thresholds.
var LogThresholds = []string{"DEBUG", "INFO", "WARNING", "ERROR"}

// StandaloneDefaults returns defaults for the standalone evaluation job.
func StandaloneDefaults() Defaults {
	return Defaults{
		Process: "UParTEvaluation",
		InputFiles: []string{
			"root://cms-xrd-global.cern.ch//store/mc/Run3Summer22MiniAODv4/TTto2L2Nu_TuneCP5_13p6TeV_powheg-pythia8/MINIAODSIM/130X_mcRun3_2022_realistic_v5-v2/2520000/001b8c73-e8b6-463a-b8e1-0e8fb6a9bbda.root",
		},
		OutputFile:   "upart_evaluation_output.root",
		MaxEvents:    1000,
		ModelPath:    DefaultModelPath,
		JetPtMin:     20.0,
		JetEtaMax:    2.4,
		GlobalTag:    DefaultGlobalTag,
		ReportEvery:  100,
		LogThreshold: "INFO",
		Fragments: []string{
			"FWCore.MessageService.MessageLogger_cfi",
			"Configuration.StandardSequences.GeometryRecoDB_cff",
			"Configuration.StandardSequences.MagneticField_cff",
			"Configuration.StandardSequences.FrontierConditions_GlobalTag_cff",
		},
	}
}

// MinimalDefaults returns defaults for the quick verbose test job.
func MinimalDefaults() Defaults {
	return Defaults{
		Process: "UParTTest",
		InputFiles: []string{
			"file:/eos/cms/store/mc/Run3Summer22MiniAODv4/QCD_PT-15to7000_TuneCP5_Flat_13p6TeV_pythia8/MINIAODSIM/130X_mcRun3_2022_realistic_v5-v2/2520000/test.root",
		},
		OutputFile:   "test_upart_output.root",
		MaxEvents:    10,
		ModelPath:    DefaultModelPath,
		JetPtMin:     15.0,
		JetEtaMax:    3.0,
		GlobalTag:    DefaultGlobalTag,
		ReportEvery:  10,
		LogThreshold: "DEBUG",
		Fragments:    []string{"FWCore.MessageService.MessageLogger_cfi"},
	}
}

// EvaluatorContract is the UParTEvaluator module interface.
func EvaluatorContract() module.Contract {
	return module.Contract{
		TypeName: EvaluatorType,
		Slots: []module.Slot{
			{Name: "jets", Required: true, Default: "slimmedJets"},
			{Name: "pfCandidates", Required: true, Default: "packedPFCandidates"},
		},
		Params: []module.ParamField{
			{Name: "modelPath", Type: param.TypeString, Required: true},
			{Name: "jetPtMin", Type: param.TypeFloat, Default: 20.0},
			{Name: "jetEtaMax", Type: param.TypeFloat, Default: 2.4},
		},
	}
}

// Recipe is a UParT evaluation job with fixed defaults.
type Recipe struct {
	name        string
	description string
	defaults    Defaults
}

var _ recipe.Recipe = (*Recipe)(nil)

// New returns a recipe named name with the given defaults.
func New(name, description string, d Defaults) *Recipe {
	return &Recipe{name: name, description: description, defaults: d}
}

// Standalone returns the upart-standalone recipe.
func Standalone() *Recipe {
	return New(StandaloneName, "UParT evaluation over MiniAOD with Run 3 conditions", StandaloneDefaults())
}

// Minimal returns the upart-minimal recipe.
func Minimal() *Recipe {
	return New(MinimalName, "Quick UParT test: 10 events, verbose logging, loose jet cuts", MinimalDefaults())
}

// Register adds both UParT recipes to reg.
func Register(reg *recipe.Registry) error {
	for _, r := range []*Recipe{Standalone(), Minimal()} {
		if err := reg.Register(r); err != nil {
			return err
		}
	}
	return nil
}

// Name implements recipe.Recipe.
func (r *Recipe) Name() string { return r.name }

// Description implements recipe.Recipe.
func (r *Recipe) Description() string { return r.description }

// Defaults returns the recipe defaults.
func (r *Recipe) Defaults() Defaults { return r.defaults }

// Registry implements recipe.Recipe.
func (r *Recipe) Registry() *param.Registry {
	d := r.defaults
	return param.NewRegistry().MustRegister(
		param.Spec{
			Name: param.InputFiles, Type: param.TypeString, Multiplicity: param.List,
			Default: d.InputFiles, Description: "Input MiniAOD files",
		},
		param.Spec{
			Name: param.OutputFile, Type: param.TypeString, Multiplicity: param.Single,
			Default: d.OutputFile, Description: "Output ROOT file",
		},
		param.Spec{
			Name: param.MaxEvents, Type: param.TypeInt, Multiplicity: param.Single,
			Default: d.MaxEvents, Description: "Maximum number of events to process (-1 for all)",
		},
		param.Spec{
			Name: param.ModelPath, Type: param.TypeString, Multiplicity: param.Single,
			Default: d.ModelPath, Description: "Path to UParT ONNX model",
		},
		param.Spec{
			Name: param.JetPtMin, Type: param.TypeFloat, Multiplicity: param.Single,
			Default: d.JetPtMin, Description: "Minimum jet pT in GeV",
		},
		param.Spec{
			Name: param.JetEtaMax, Type: param.TypeFloat, Multiplicity: param.Single,
			Default: d.JetEtaMax, Description: "Maximum jet |eta|",
		},
		param.Spec{
			Name: param.GlobalTag, Type: param.TypeString, Multiplicity: param.Single,
			Default: d.GlobalTag, Description: "Conditions global tag",
		},
		param.Spec{
			Name: param.ConditionsOverrides, Type: param.TypeString, Multiplicity: param.List,
			Description: "Per-record conditions overrides as record=tag",
		},
		param.Spec{
			Name: param.ReportEvery, Type: param.TypeInt, Multiplicity: param.Single,
			Default: d.ReportEvery, Description: "Framework progress report interval in events",
		},
		param.Spec{
			Name: param.LogThreshold, Type: param.TypeString, Multiplicity: param.Single,
			Default: d.LogThreshold, Choices: LogThresholds, Description: "MessageLogger threshold",
		},
	)
}

// Conditions implements recipe.Recipe.
func (r *Recipe) Conditions(set *param.Set) (conditions.Tag, error) {
	name, err := set.String(param.GlobalTag)
	if err != nil {
		return conditions.Tag{}, err
	}
	entries, err := set.Strings(param.ConditionsOverrides)
	if err != nil {
		return conditions.Tag{}, err
	}
	overrides, err := conditions.ParseOverrides(entries)
	if err != nil {
		return conditions.Tag{}, err
	}
	return conditions.Build(name, overrides)
}

// Blueprint implements recipe.Recipe.
func (r *Recipe) Blueprint() job.Blueprint {
	return job.Blueprint{
		Process:   r.defaults.Process,
		Recipe:    r.name,
		PathName:  "p",
		Fragments: r.defaults.Fragments,
		Services: []job.ServiceDecl{
			{TypeName: MessageLoggerType, Params: messageLoggerParams},
			{TypeName: FileServiceType, Params: fileServiceParams},
		},
		Modules: []job.ModuleDecl{{
			Label:    EvaluatorLabel,
			Contract: EvaluatorContract(),
			Inputs: map[string]string{
				"jets":         "slimmedJets",
				"pfCandidates": "packedPFCandidates",
			},
			Params: evaluatorParams,
		}},
	}
}

func messageLoggerParams(set *param.Set) (map[string]any, error) {
	every, err := set.Int(param.ReportEvery)
	if err != nil {
		return nil, err
	}
	if every <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %d", param.ReportEvery, every)
	}
	threshold, err := set.String(param.LogThreshold)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"reportEvery": every,
		"threshold":   threshold,
		"categories": map[string]any{
			EvaluatorType: map[string]any{"limit": -1},
		},
	}, nil
}

func fileServiceParams(set *param.Set) (map[string]any, error) {
	out, err := set.String(param.OutputFile)
	if err != nil {
		return nil, err
	}
	return map[string]any{"fileName": out}, nil
}

func evaluatorParams(set *param.Set) (map[string]any, error) {
	model, err := set.String(param.ModelPath)
	if err != nil {
		return nil, err
	}
	ptMin, err := set.Float(param.JetPtMin)
	if err != nil {
		return nil, err
	}
	etaMax, err := set.Float(param.JetEtaMax)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"modelPath": model,
		"jetPtMin":  ptMin,
		"jetEtaMax": etaMax,
	}, nil
}
