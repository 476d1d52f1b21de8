package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_DATABASE_ENGINE", " Postgres ")
	t.Setenv("TEST_REPORT_SEMESTERSCOPE", "schedule")
	t.Setenv("TEST_REPORT_STRICTDATES", "true")
	t.Setenv("TEST_SERVER_ADDRESS", "0.0.0.0:9000")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, EnginePostgres, conf.Database.Engine)
	assert.Equal(t, 5432, conf.Database.Port)
	assert.Equal(t, SemesterScopeSchedule, conf.Report.SemesterScope)
	assert.True(t, conf.Report.StrictDates)
	assert.Equal(t, "Attendance Report", conf.Report.Title)
	assert.Equal(t, "0.0.0.0", conf.Server.Host)
	assert.NoError(t, conf.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		engine     string
		scope      string
		wantFields []string
	}{
		{name: "sqlite", engine: EngineSQLite, scope: SemesterScopeEvent},
		{name: "unknown engine", engine: "mysql", scope: SemesterScopeEvent, wantFields: []string{"database.engine"}},
		{name: "unknown scope", engine: EnginePostgres, scope: "term", wantFields: []string{"report.semesterScope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Config{
				Database: DatabaseConfig{Engine: tt.engine},
				Report:   ReportConfig{SemesterScope: tt.scope},
			}
			err := conf.Validate()
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			if assert.True(t, IsValidationError(err), "error = %v", err) {
				var got []string
				for _, f := range err.(*ValidationError).Fields {
					got = append(got, f.Field)
				}
				assert.Equal(t, tt.wantFields, got)
			}
		})
	}
}
