package commands

import (
	"github.com/spf13/cobra"

	teaui "tableflip.dev/moodlog/pkg/runner/tea"
	"tableflip.dev/moodlog/pkg/voice"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
moodlog ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			var rec voice.Recognizer = voice.Unavailable{}
			if c := e.Config.VoiceCommand(); c != "" {
				rec = voice.NewCommandRecognizer(c, e.Log)
			}
			s := teaui.Shell{
				Service:     e.Service,
				Persistence: e.Persistence,
				Recognizer:  rec,
				Logger:      e.Log,
			}
			return s.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
