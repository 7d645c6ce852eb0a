package answer

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/preseedhq/preseed/engine/dialog"
	"github.com/preseedhq/preseed/engine/workflow"
	"github.com/preseedhq/preseed/pkg/logger"
)

const bannerWidth = 77

// Generate writes a self-documenting answer file for the given dialogs.
// Each dialog becomes an INI section annotated with the dialog's title and
// reason, and each component gets a commented block with its label,
// description, type, default and declared choices. A stored answer that
// renders to a non-empty string is written as an active `key = value` line;
// everything else becomes a commented-out suggestion the operator can
// uncomment. Dialogs without components are skipped. The file is written in
// one shot and an IO failure surfaces to the caller.
func (a *AnswerStore) Generate(ctx context.Context, dialogs []*dialog.Dialog, path string) error {
	start := time.Now()
	var buf bytes.Buffer
	written := 0
	for _, d := range dialogs {
		if len(d.Components) == 0 {
			continue
		}
		entry, err := a.store.Get(ctx, d.Scope)
		if err != nil {
			return err
		}
		writeDialogSection(&buf, d, entry)
		written++
	}
	if err := afero.WriteFile(a.fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing answer file: %w", err)
	}
	a.metrics.RecordGenerate(ctx, time.Since(start))
	logger.FromContext(ctx).Info("answer file generated", "path", path, "dialogs", written)
	return nil
}

// GenerateForWorkflow generates an answer file covering every dialog
// discovered in the workflow.
func (a *AnswerStore) GenerateForWorkflow(ctx context.Context, wf *workflow.Config, path string) error {
	return a.Generate(ctx, wf.Dialogs(), path)
}

func writeDialogSection(buf *bytes.Buffer, d *dialog.Dialog, entry Entry) {
	fmt.Fprintf(buf, "[%s]\n", d.Scope)
	fmt.Fprintf(buf, "# %-20s%s\n", "Title:", d.Title)
	fmt.Fprintf(buf, "# %-20s%s\n", "Reason:", d.Reason)
	for _, c := range d.Components {
		writeComponentBlock(buf, d.Scope, c, entry[c.Key])
	}
}

func writeComponentBlock(buf *bytes.Buffer, scope string, c *dialog.Component, stored any) {
	fmt.Fprintf(buf, "# %s\n", centerBanner(fmt.Sprintf(" %s.%s ", scope, c.Key)))
	fmt.Fprintf(buf, "# %-20s%s\n", "Label:", c.Label)
	fmt.Fprintf(buf, "# %-20s%s\n", "Description:", c.Description)
	fmt.Fprintf(buf, "# %-20s%s\n", "Type:", c.Type)
	fmt.Fprintf(buf, "# %-20s%s\n", "Default:", renderValue(c.Default))
	if c.HasChoices() {
		buf.WriteString("# Available choices:\n")
		for _, choice := range c.Choices {
			fmt.Fprintf(buf, "# - %s\n", choice)
		}
		if c.Type == dialog.ValueMultiChoice {
			buf.WriteString("#\n# Values are separated by semi-colon \";\"\n")
		}
	}
	if answer := renderValue(stored); answer != "" {
		fmt.Fprintf(buf, "%s = %s\n", c.Key, answer)
	} else {
		buf.WriteString("# Unanswered question. Uncomment the following line with your answer\n")
		fmt.Fprintf(buf, "# %s = %s\n", c.Key, renderValue(c.Default))
	}
	buf.WriteString("\n")
}

// centerBanner pads s with '=' to the banner width. Odd padding puts the
// extra character on the left.
func centerBanner(s string) string {
	margin := bannerWidth - len(s)
	if margin <= 0 {
		return s
	}
	left := margin / 2
	if margin%2 == 1 {
		left++
	}
	return strings.Repeat("=", left) + s + strings.Repeat("=", margin-left)
}

// renderValue turns a stored answer or default into its answer-file form.
// The mapping mirrors translation: a rendered value loads and translates
// back to the value it was rendered from. Absent values render empty.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case []string:
		return strings.Join(val, ";")
	default:
		return fmt.Sprintf("%v", val)
	}
}
