package options

import (
	"github.com/spf13/cobra"
)

// SettingsOptions holds the fields to change. Fields whose flag was not
// given stay nil.
type SettingsOptions struct {
	DisplayName  *string
	ReminderTime *string
	Theme        *string
	Timezone     *string

	displayName, reminderTime, theme, timezone string
}

func AddSettingsArgs(cmd *cobra.Command, o *SettingsOptions) {
	cmd.Flags().StringVar(&o.displayName, "display-name", "",
		"Name shown in the greeting.")
	cmd.Flags().StringVar(&o.reminderTime, "reminder", "",
		`Daily reminder time as HH:MM, example: --reminder="20:00".`)
	cmd.Flags().StringVar(&o.theme, "theme", "",
		"Color theme: warm, citrus or sunset.")
	cmd.Flags().StringVar(&o.timezone, "timezone", "",
		`IANA zone entries are shown in, example: --timezone="Europe/Paris".`)
}

// Resolve records which flags were set on cmd.
func (o *SettingsOptions) Resolve(cmd *cobra.Command) {
	set := func(name string, v *string) *string {
		if cmd.Flags().Changed(name) {
			return v
		}
		return nil
	}
	o.DisplayName = set("display-name", &o.displayName)
	o.ReminderTime = set("reminder", &o.reminderTime)
	o.Theme = set("theme", &o.theme)
	o.Timezone = set("timezone", &o.timezone)
}

// Empty reports whether no field was given.
func (o *SettingsOptions) Empty() bool {
	return o.DisplayName == nil && o.ReminderTime == nil && o.Theme == nil && o.Timezone == nil
}
