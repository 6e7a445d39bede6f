// Package backup schedules periodic snapshots of the SQLite database.
package backup

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Barczakson/inwentura-op-sub001/internal/store"
)

// StartScheduler runs database backups on the given 5-field cron schedule
// (minute hour day-of-month month day-of-week), writing snapshots into
// backupDir. An empty or invalid schedule disables backups.
func StartScheduler(schedule, backupDir string, st *store.Store) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("Auto-backup disabled (backup_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid backup_schedule '%s': %v, auto-backup disabled", schedule, err)
		return
	}

	log.Printf("Auto-backup scheduled (cron: %s) into %s", schedule, backupDir)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			time.Sleep(next.Sub(now))

			if err := Snapshot(st, backupDir); err != nil {
				log.Printf("Backup failed: %v", err)
			}
		}
	}()
}

// Snapshot writes one timestamped copy of the database into backupDir using
// VACUUM INTO, which produces a consistent snapshot without blocking writers
// longer than a normal transaction.
func Snapshot(st *store.Store, backupDir string) error {
	target := filepath.Join(backupDir,
		fmt.Sprintf("inwentura_%s.db", time.Now().Format("20060102_150405")))
	if err := st.Exec("VACUUM INTO ?", target); err != nil {
		return fmt.Errorf("failed to back up database to %s: %w", target, err)
	}
	log.Printf("Backup written: %s", target)
	return nil
}
