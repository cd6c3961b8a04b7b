// Package seed loads the national location reference dataset from CSV files
// and installs it through the store in one shot.
package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vecinal/internal/location/models"
	"vecinal/internal/location/store"
)

// Filenames expected inside the dataset directory.
const (
	DepartmentsFile    = "departments.csv"
	ProvincesFile      = "provinces.csv"
	MunicipalitiesFile = "municipalities.csv"
)

// Load reads the three CSV files from dir and replaces the stored taxonomy.
func Load(ctx context.Context, dir string, taxonomy store.Store) error {
	now := time.Now().UTC()

	departments, err := readCSV(filepath.Join(dir, DepartmentsFile), 3, func(rec []string) (*models.Department, error) {
		code, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("code %q: %w", rec[0], err)
		}
		return &models.Department{
			Code:         code,
			Name:         rec[1],
			Abbreviation: rec[2],
			CreatedAt:    now,
			UpdatedAt:    now,
		}, nil
	})
	if err != nil {
		return fmt.Errorf("departments: %w", err)
	}

	provinces, err := readCSV(filepath.Join(dir, ProvincesFile), 3, func(rec []string) (*models.Province, error) {
		code, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("code %q: %w", rec[0], err)
		}
		departmentCode, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("departmentCode %q: %w", rec[2], err)
		}
		return &models.Province{
			Code:           code,
			Name:           rec[1],
			DepartmentCode: departmentCode,
			CreatedAt:      now,
			UpdatedAt:      now,
		}, nil
	})
	if err != nil {
		return fmt.Errorf("provinces: %w", err)
	}

	departmentOf := make(map[int]int, len(provinces))
	for _, p := range provinces {
		departmentOf[p.Code] = p.DepartmentCode
	}

	municipalities, err := readCSV(filepath.Join(dir, MunicipalitiesFile), 3, func(rec []string) (*models.Municipality, error) {
		code, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("code %q: %w", rec[0], err)
		}
		provinceCode, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("provinceCode %q: %w", rec[2], err)
		}
		departmentCode, ok := departmentOf[provinceCode]
		if !ok {
			return nil, fmt.Errorf("municipality %d references unknown province %d", code, provinceCode)
		}
		return &models.Municipality{
			Code:           code,
			Name:           rec[1],
			ProvinceCode:   provinceCode,
			DepartmentCode: departmentCode,
			CreatedAt:      now,
			UpdatedAt:      now,
		}, nil
	})
	if err != nil {
		return fmt.Errorf("municipalities: %w", err)
	}

	return taxonomy.ReplaceAll(ctx, departments, provinces, municipalities)
}

// readCSV parses a headered CSV file with at least want columns per row.
func readCSV[T any](path string, want int, parse func([]string) (*T, error)) ([]*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	// Skip the header row.
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []*T
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) < want {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, want, len(rec))
		}
		row, err := parse(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, row)
	}
	return out, nil
}
