package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"token-scanner/internal/config"
	"token-scanner/internal/core"

	_ "github.com/go-sql-driver/mysql"
)

const scanPolicyTable = "scan_policy_config"

// scanPolicyParams is the shape of the params JSON column.
type scanPolicyParams struct {
	MinScore        float64 `json:"min_score"`
	CooldownMinutes int     `json:"cooldown_minutes"`
}

// LoadScanPoliciesFromMySQL loads per-kind scan policies from the web3
// database. Table: scan_policy_config. The params column is stored as JSON
// (MySQL JSON type is returned as []byte).
func LoadScanPoliciesFromMySQL(dsn string) ([]*core.ScanPolicy, error) {
	if dsn == "" {
		return nil, fmt.Errorf("MySQL DSN is required when SCAN_POLICY_SOURCE=mysql")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("mysql ping: %w", err)
	}

	return loadScanPolicies(db)
}

func loadScanPolicies(db *sql.DB) ([]*core.ScanPolicy, error) {
	query := `SELECT id, kind, params, enabled FROM ` + scanPolicyTable
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*core.ScanPolicy
	for rows.Next() {
		var id int64
		var kind string
		var enabled bool
		var paramsJSON []byte

		if err := rows.Scan(&id, &kind, &paramsJSON, &enabled); err != nil {
			return nil, err
		}

		var params scanPolicyParams
		if len(paramsJSON) > 0 {
			if err := json.Unmarshal(paramsJSON, &params); err != nil {
				return nil, fmt.Errorf("scan policy id %d: invalid params JSON: %w", id, err)
			}
		}

		policy, err := config.ParseScanPolicy(config.ScanPolicyConfig{
			Kind:            kind,
			MinScore:        params.MinScore,
			CooldownMinutes: params.CooldownMinutes,
			Enabled:         enabled,
		})
		if err != nil {
			return nil, fmt.Errorf("scan policy id %d: %w", id, err)
		}
		policy.ID = id
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}
