package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/kush2803/CatLearn/core/featselect"
	"github.com/kush2803/CatLearn/core/model"
)

// buildConfig is the YAML shape consumed by the build command. Matrix
// files are CSV with a header row: first column the structure
// identifier, last column the target, everything between a feature.
type buildConfig struct {
	TrainCSV string `yaml:"train_csv"`
	TestCSV  string `yaml:"test_csv"`

	Screening      string  `yaml:"screening"`
	Correlation    string  `yaml:"correlation"`
	Expand         bool    `yaml:"expand"`
	Optimize       bool    `yaml:"optimize"`
	Size           int     `yaml:"size"`
	Tune           bool    `yaml:"tune_hyperparameters"`
	Width          float64 `yaml:"width"`
	Regularization float64 `yaml:"regularization"`

	UpdateTrainDB bool   `yaml:"update_train_db"`
	UpdateTestDB  bool   `yaml:"update_test_db"`
	DBName        string `yaml:"db_name"`
}

var buildConfigPath string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a reduced feature model from CSV feature matrices",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(buildConfigPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		var bc buildConfig
		if err := yaml.Unmarshal(raw, &bc); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}

		cfg, err := bc.toModelConfig()
		if err != nil {
			return err
		}

		in := model.Input{}
		in.Train, in.TrainIDs, in.TrainTarget, in.Names, err = readMatrixCSV(bc.TrainCSV)
		if err != nil {
			return fmt.Errorf("training matrix: %w", err)
		}
		if bc.TestCSV != "" {
			var testNames []string
			in.Test, in.TestIDs, in.TestTarget, testNames, err = readMatrixCSV(bc.TestCSV)
			if err != nil {
				return fmt.Errorf("test matrix: %w", err)
			}
			if len(testNames) != len(in.Names) {
				return fmt.Errorf("test matrix has %d features, train has %d", len(testNames), len(in.Names))
			}
		}

		builder, err := model.New(cfg)
		if err != nil {
			return err
		}
		res, err := builder.FromMatrix(cmd.Context(), in)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "selected %d features:\n", len(res.Names))
		for _, name := range res.Names {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
		}
		if cfg.Optimize {
			fmt.Fprintf(cmd.OutOrStdout(), "validation rmse: %.6g\n", res.BestError)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildConfigPath, "config", "c", "catlearn.yaml", "path to the build configuration file")
	rootCmd.AddCommand(buildCmd)
}

func (bc buildConfig) toModelConfig() (model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Expand = bc.Expand
	cfg.Optimize = bc.Optimize
	cfg.Size = bc.Size
	cfg.TuneHyperparameters = bc.Tune
	cfg.UpdateTrainDB = bc.UpdateTrainDB
	cfg.UpdateTestDB = bc.UpdateTestDB

	if bc.DBName != "" {
		cfg.DBName = bc.DBName
	}
	if bc.Width != 0 {
		cfg.Width = bc.Width
	}
	if bc.Regularization != 0 {
		cfg.Regularization = bc.Regularization
	}
	if bc.Screening != "" {
		m, err := model.ParseScreeningMethod(bc.Screening)
		if err != nil {
			return model.Config{}, err
		}
		cfg.Screening = m
	}
	if bc.Correlation != "" {
		c, err := featselect.ParseCorrelation(bc.Correlation)
		if err != nil {
			return model.Config{}, err
		}
		cfg.Correlation = c
	}
	return cfg, nil
}

// readMatrixCSV loads an id/features/target CSV into pipeline inputs.
func readMatrixCSV(path string) (m *mat.Dense, ids []string, targets []float64, names []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if len(records) < 2 || len(records[0]) < 3 {
		return nil, nil, nil, nil, fmt.Errorf("%s: need a header plus rows of [id, features..., target]", path)
	}

	header := records[0]
	names = header[1 : len(header)-1]
	d := len(names)

	rows := records[1:]
	data := make([]float64, 0, len(rows)*d)
	for i, rec := range rows {
		if len(rec) != d+2 {
			return nil, nil, nil, nil, fmt.Errorf("%s: row %d has %d fields, want %d", path, i+1, len(rec), d+2)
		}
		ids = append(ids, rec[0])
		for _, field := range rec[1 : len(rec)-1] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
			}
			data = append(data, v)
		}
		t, err := strconv.ParseFloat(rec[len(rec)-1], 64)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("%s: row %d target: %w", path, i+1, err)
		}
		targets = append(targets, t)
	}

	return mat.NewDense(len(rows), d, data), ids, targets, names, nil
}
