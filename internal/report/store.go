package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"gotriage/internal/models"
)

// Store keeps one JSON file per day holding the reports of the runs started
// that day.
type Store struct {
	basePath string
	mu       sync.RWMutex
}

type DailyData struct {
	Date string             `json:"date"`
	Runs []models.RunReport `json:"runs"`
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "./reports"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{basePath: dir}, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) getFilePath(date string) string {
	return filepath.Join(s.basePath, date+".json")
}

func (s *Store) loadDailyData(date string) (*DailyData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.getFilePath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return &DailyData{Date: date, Runs: []models.RunReport{}}, nil
		}
		return nil, err
	}

	var daily DailyData
	if err := json.Unmarshal(data, &daily); err != nil {
		return &DailyData{Date: date, Runs: []models.RunReport{}}, nil
	}
	return &daily, nil
}

func (s *Store) saveDailyData(data *DailyData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.getFilePath(data.Date), jsonData, 0644)
}

// SaveRun stores the report under its start date, replacing an earlier
// report with the same run id.
func (s *Store) SaveRun(run models.RunReport) error {
	date := run.StartedAt.Format("2006-01-02")

	daily, err := s.loadDailyData(date)
	if err != nil {
		daily = &DailyData{Date: date, Runs: []models.RunReport{}}
	}

	for i, r := range daily.Runs {
		if r.RunID == run.RunID {
			daily.Runs[i] = run
			return s.saveDailyData(daily)
		}
	}

	daily.Runs = append(daily.Runs, run)
	return s.saveDailyData(daily)
}

func (s *Store) GetRunsByDate(date string) ([]models.RunReport, error) {
	daily, err := s.loadDailyData(date)
	if err != nil {
		return nil, err
	}
	return daily.Runs, nil
}

func (s *Store) GetSummaryByDate(date string) (models.RunSummary, error) {
	var summary models.RunSummary

	runs, err := s.GetRunsByDate(date)
	if err != nil {
		return summary, err
	}

	for _, r := range runs {
		summary.Runs++
		if r.Submitted {
			summary.Submitted++
		} else {
			summary.Failed++
		}
		if r.FetchError != "" {
			summary.PartialFetch++
		}
	}
	return summary, nil
}
