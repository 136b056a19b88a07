// Package audit checks the referral ledger invariants directly in SQL.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"referral-rewards/internal/models"
)

// Finding is one ledger row that breaks an invariant
type Finding struct {
	Check  string
	Detail string
}

type check struct {
	name  string
	query string
}

var checks = []check{
	{
		name:  "self_referral",
		query: `SELECT id FROM referrals WHERE referrer_id = new_user_uid`,
	},
	{
		name:  "duplicate_email",
		query: `SELECT new_user_email FROM referrals GROUP BY new_user_email HAVING COUNT(*) > 1`,
	},
	{
		name:  "duplicate_ip",
		query: `SELECT new_user_ip FROM referrals GROUP BY new_user_ip HAVING COUNT(*) > 1`,
	},
	{
		name: "points_below_referrals",
		query: `SELECT u.id FROM users u
			JOIN (SELECT referrer_id, COUNT(*) AS credited FROM referrals GROUP BY referrer_id) r
			ON r.referrer_id = u.id
			WHERE u.points < r.credited`,
	},
	{
		name:  "referred_user_without_points",
		query: `SELECT id FROM users WHERE referred_by IS NOT NULL AND referred_by <> '' AND points < 1`,
	},
	{
		name:  "missing_referrer_account",
		query: `SELECT DISTINCT r.referrer_id FROM referrals r LEFT JOIN users u ON u.id = r.referrer_id WHERE u.id IS NULL`,
	},
	{
		name:  "milestone_above_points",
		query: milestoneQuery(),
	},
}

func milestoneQuery() string {
	conds := make([]string, 0, len(models.Milestones))
	for _, m := range models.Milestones {
		conds = append(conds, fmt.Sprintf("(milestone = '%s' AND points < %d)", m.Label, m.Threshold))
	}
	return "SELECT id FROM users WHERE " + strings.Join(conds, " OR ")
}

// Run executes every check and returns the offending rows
func Run(ctx context.Context, db *sql.DB) ([]Finding, error) {
	var findings []Finding

	for _, c := range checks {
		rows, err := db.QueryContext(ctx, c.query)
		if err != nil {
			return nil, fmt.Errorf("check %s failed: %w", c.name, err)
		}

		for rows.Next() {
			var detail string
			if err := rows.Scan(&detail); err != nil {
				rows.Close()
				return nil, fmt.Errorf("check %s scan failed: %w", c.name, err)
			}
			findings = append(findings, Finding{Check: c.name, Detail: detail})
		}

		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("check %s failed: %w", c.name, err)
		}
	}

	return findings, nil
}
