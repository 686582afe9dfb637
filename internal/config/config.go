// Package config provides configuration loading and management for remindbot.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Notion     Notion     `json:"notion"           mapstructure:"notion"`
	Telegram   Telegram   `json:"telegram"         mapstructure:"telegram"`
	Advisor    Advisor    `json:"advisor"          mapstructure:"advisor"`
	Schedule   Schedule   `json:"schedule"         mapstructure:"schedule"`
	Properties Properties `json:"properties"       mapstructure:"properties"`
	Listen     string     `json:"listen,omitempty" mapstructure:"listen"`
}

// Notion holds record-store connection settings.
type Notion struct {
	Token   string `json:"token,omitempty"    mapstructure:"token"`
	TasksDB string `json:"tasks_db"           mapstructure:"tasks_db"`
	GoalsDB string `json:"goals_db,omitempty" mapstructure:"goals_db"`
}

// Telegram holds notifier settings. ChatID doubles as the shared secret:
// inbound webhook updates from any other chat are rejected.
type Telegram struct {
	Token      string `json:"token,omitempty"       mapstructure:"token"`
	ChatID     string `json:"chat_id,omitempty"     mapstructure:"chat_id"`
	WebhookURL string `json:"webhook_url,omitempty" mapstructure:"webhook_url"`
}

// Advisor configures the optional language-model analysis step.
type Advisor struct {
	Enabled bool   `json:"enabled"         mapstructure:"enabled"`
	Model   string `json:"model,omitempty" mapstructure:"model"`
}

// Schedule defines when the periodic reports fire.
type Schedule struct {
	Timezone    string `json:"timezone,omitempty"     mapstructure:"timezone"`
	DailyHour   int    `json:"daily_hour"             mapstructure:"daily_hour"`
	DailyMinute int    `json:"daily_minute"           mapstructure:"daily_minute"`
	WeeklyHour  int    `json:"weekly_hour"            mapstructure:"weekly_hour"`
	MonthlyHour int    `json:"monthly_hour"           mapstructure:"monthly_hour"`
	RunOnStart  bool   `json:"run_on_start,omitempty" mapstructure:"run_on_start"`
}

// Properties maps the logical task/goal fields onto the property names used
// in the upstream databases. Every name is overridable because the store
// schema is user-owned and renames happen.
type Properties struct {
	Title        string `json:"title,omitempty"         mapstructure:"title"`
	Done         string `json:"done,omitempty"          mapstructure:"done"`
	Active       string `json:"active,omitempty"        mapstructure:"active"`
	Due          string `json:"due,omitempty"           mapstructure:"due"`
	Completed    string `json:"completed,omitempty"     mapstructure:"completed"`
	GoalRelation string `json:"goal_relation,omitempty" mapstructure:"goal_relation"`
	Type         string `json:"type,omitempty"          mapstructure:"type"`
	Priority     string `json:"priority,omitempty"      mapstructure:"priority"`
	Note         string `json:"note,omitempty"          mapstructure:"note"`

	GoalStatus    string `json:"goal_status,omitempty"     mapstructure:"goal_status"`
	GoalStart     string `json:"goal_start,omitempty"      mapstructure:"goal_start"`
	GoalEnd       string `json:"goal_end,omitempty"        mapstructure:"goal_end"`
	GoalCountdown string `json:"goal_countdown,omitempty"  mapstructure:"goal_countdown"`
	GoalProgress  string `json:"goal_progress,omitempty"   mapstructure:"goal_progress"`
	GoalTotal     string `json:"goal_total,omitempty"      mapstructure:"goal_total"`
	GoalDone      string `json:"goal_done,omitempty"       mapstructure:"goal_done"`
	GoalDoneWeek  string `json:"goal_done_week,omitempty"  mapstructure:"goal_done_week"`
	GoalDoneMonth string `json:"goal_done_month,omitempty" mapstructure:"goal_done_month"`
}

// Default returns the configuration defaults applied before file and
// environment overrides.
func Default() Config {
	return Config{
		Advisor: Advisor{
			Model: "gemini-2.0-flash",
		},
		Schedule: Schedule{
			Timezone:    "Asia/Ho_Chi_Minh",
			DailyHour:   14,
			WeeklyHour:  20,
			MonthlyHour: 8,
			RunOnStart:  true,
		},
		Properties: Properties{
			Title:        "Name",
			Done:         "Done",
			Active:       "Active",
			Due:          "Due",
			Completed:    "Completed",
			GoalRelation: "Goals",
			Type:         "Type",
			Priority:     "Priority",
			Note:         "Note",

			GoalStatus:    "Status",
			GoalStart:     "Start",
			GoalEnd:       "End",
			GoalCountdown: "Countdown",
			GoalProgress:  "Progress",
			GoalTotal:     "Total tasks",
			GoalDone:      "Done tasks",
			GoalDoneWeek:  "Done this week",
			GoalDoneMonth: "Done this month",
		},
		Listen: ":5000",
	}
}

// Load reads the optional config file at path, validates the raw settings
// against the embedded schema, and applies environment overrides for secrets.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			viper.SetConfigFile(path)
			viper.SetConfigType("json")
			if err := viper.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
			if err := ValidateSettings(viper.AllSettings()); err != nil {
				return Config{}, err
			}
			if err := viper.Unmarshal(&cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays the secrets and ids the original deployment passed
// through the environment.
func applyEnv(cfg *Config) {
	overlay := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	overlay(&cfg.Notion.Token, "NOTION_TOKEN")
	overlay(&cfg.Notion.TasksDB, "REMIND_NOTION_DATABASE")
	overlay(&cfg.Notion.GoalsDB, "GOALS_NOTION_DATABASE")
	overlay(&cfg.Telegram.Token, "TELEGRAM_TOKEN")
	overlay(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	overlay(&cfg.Telegram.WebhookURL, "WEBHOOK_URL")
}

// Validate checks the invariants the rest of the process relies on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Notion.Token) == "" {
		return fmt.Errorf("notion token is required (set notion.token or NOTION_TOKEN)")
	}
	if strings.TrimSpace(c.Notion.TasksDB) == "" {
		return fmt.Errorf("tasks database id is required (set notion.tasks_db or REMIND_NOTION_DATABASE)")
	}
	if c.Schedule.DailyHour < 0 || c.Schedule.DailyHour > 23 {
		return fmt.Errorf("schedule.daily_hour must be in [0,23]")
	}
	if c.Schedule.DailyMinute < 0 || c.Schedule.DailyMinute > 59 {
		return fmt.Errorf("schedule.daily_minute must be in [0,59]")
	}
	if c.Schedule.WeeklyHour < 0 || c.Schedule.WeeklyHour > 23 {
		return fmt.Errorf("schedule.weekly_hour must be in [0,23]")
	}
	if c.Schedule.MonthlyHour < 0 || c.Schedule.MonthlyHour > 23 {
		return fmt.Errorf("schedule.monthly_hour must be in [0,23]")
	}
	return nil
}
