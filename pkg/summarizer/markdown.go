package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		if fn != nil {
			f.translate = fn
		}
	}
}

// WithVersion adds the program version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter. Labels are English unless
// a translator is given.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ Formatter = (*MarkdownFormatter)(nil)

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Playback Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05"))

	// Results
	fmt.Fprintf(&b, "## %s\n\n", t("Results"))
	f.tableHeader(&b)
	stop := t(s.Run.StopReason)
	if s.Run.Interrupted {
		stop = t("Interrupted")
	}
	f.row(&b, "Stop Reason", stop)
	f.row(&b, "Ticks", fmt.Sprintf("%d", s.Run.Ticks))
	f.row(&b, "Elapsed", formatDuration(s.Run.Elapsed))
	f.row(&b, "Frames Displayed", fmt.Sprintf("%d", s.Run.TotalFrames))
	f.row(&b, "Frames Missed", fmt.Sprintf("%d", s.TotalMissed()))
	f.row(&b, "Units Failed", fmt.Sprintf("%d", s.TotalFailed()))
	f.row(&b, "Snapshots", fmt.Sprintf("%d", s.Run.Snapshots))
	b.WriteString("\n")

	// Settings
	st := s.Settings
	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	f.tableHeader(&b)
	f.row(&b, "Pacing", t(st.Mode))
	f.row(&b, "FPS", fmt.Sprintf("%.1f", st.FPS))
	f.row(&b, "Tick Rate", fmt.Sprintf("%.1f", st.TickRate))
	f.row(&b, "Repeat", f.yesNo(st.Repeat))
	f.row(&b, "Restarts", fmt.Sprintf("%d", st.Restarts))
	if st.Buffer > 0 {
		f.row(&b, "Buffer", fmt.Sprintf("%d", st.Buffer))
	} else {
		f.row(&b, "Buffer", t("Default"))
	}
	f.row(&b, "Color Conversion", t(st.ColorMode))
	f.row(&b, "Snapshot Directory", f.orNone(st.SnapshotDir))
	if st.MaxFrames > 0 {
		f.row(&b, "Frame Limit", fmt.Sprintf("%d", st.MaxFrames))
	}
	if st.Duration > 0 {
		f.row(&b, "Duration Limit", formatDuration(st.Duration))
	}
	b.WriteString("\n")

	// Streams
	if len(s.Streams) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Streams"))
		cols := []string{"Video", "Size", "Resolution", "Units", "Displayed", "Missed", "Discarded", "Decoded", "Failed", "Outcome"}
		for i := range cols {
			cols[i] = t(cols[i])
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cols, " | "))
		b.WriteString("|" + strings.Repeat("------|", len(cols)) + "\n")
		for _, v := range s.Streams {
			resolution := "-"
			if v.Width > 0 && v.Height > 0 {
				resolution = fmt.Sprintf("%dx%d", v.Width, v.Height)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %d | %d | %d | %d | %d | %s |\n",
				v.Video, formatBytes(v.Bytes), resolution, v.Units,
				v.Displayed, v.Missed, v.Discarded, v.Decoded, v.Failed, t(v.Outcome))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	if f.version != "" {
		fmt.Fprintf(&b, "%s h264play %s\n", t("Generated by"), f.version)
	} else {
		fmt.Fprintf(&b, "%s h264play\n", t("Generated by"))
	}

	return b.String()
}

func (f *MarkdownFormatter) tableHeader(b *strings.Builder) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate("Item"), f.translate("Value"))
	b.WriteString("|------|------|\n")
}

func (f *MarkdownFormatter) row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate(label), value)
}

func (f *MarkdownFormatter) yesNo(v bool) string {
	if v {
		return f.translate("Yes")
	}
	return f.translate("No")
}

func (f *MarkdownFormatter) orNone(s string) string {
	if s == "" {
		return f.translate("None")
	}
	return s
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f s", d.Seconds())
}

// formatBytes formats a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
