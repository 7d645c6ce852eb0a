package answer

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preseedhq/preseed/engine/dialog"
	"github.com/preseedhq/preseed/engine/workflow"
)

func newMemoryAnswerStore(t *testing.T) (*AnswerStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	a := New(WithFilesystem(fs))
	t.Cleanup(func() { a.Close() })
	return a, fs
}

func remediationDialog() *dialog.Dialog {
	return &dialog.Dialog{
		Scope:  "remediate",
		Title:  "Remediation settings",
		Reason: "Confirm how remediation may proceed",
		Components: []*dialog.Component{
			{
				Key:         "confirm",
				Label:       "Confirm",
				Description: "Allow automatic remediation",
				Type:        dialog.ValueBool,
				Default:     false,
			},
			{
				Key:         "retries",
				Label:       "Retries",
				Description: "Attempts before giving up",
				Type:        dialog.ValueInt,
				Default:     3,
			},
			{
				Key:         "features",
				Label:       "Features",
				Description: "Remediation features to enable",
				Type:        dialog.ValueMultiChoice,
				Default:     []string{"checks"},
				Choices:     []string{"checks", "backup", "reboot"},
			},
			{
				Key:         "mode",
				Label:       "Mode",
				Description: "How aggressively to remediate",
				Type:        dialog.ValueChoice,
				Default:     "safe",
				Choices:     []string{"safe", "fast"},
			},
			{
				Key:         "note",
				Label:       "Note",
				Description: "Free-form operator note",
				Type:        dialog.ValueString,
			},
		},
	}
}

func TestAnswerStore_Answer(t *testing.T) {
	t.Run("Should record an answer into a fresh scope", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		require.NoError(t, a.Answer(ctx, "remediate", "confirm", true))
		entry, err := a.Get(ctx, "remediate")
		require.NoError(t, err)
		assert.Equal(t, Entry{"confirm": true}, entry)
	})

	t.Run("Should update one key and keep the rest", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		require.NoError(t, a.Answer(ctx, "remediate", "confirm", true))
		require.NoError(t, a.Answer(ctx, "remediate", "retries", 2))
		require.NoError(t, a.Answer(ctx, "remediate", "confirm", false))
		entry, err := a.Get(ctx, "remediate")
		require.NoError(t, err)
		assert.Equal(t, Entry{"confirm": false, "retries": 2}, entry)
	})

	t.Run("Should hand out detached entries", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		require.NoError(t, a.Answer(ctx, "remediate", "confirm", true))
		entry, err := a.Get(ctx, "remediate")
		require.NoError(t, err)
		entry["confirm"] = false
		again, err := a.Get(ctx, "remediate")
		require.NoError(t, err)
		assert.Equal(t, true, again["confirm"])
	})
}

func TestAnswerStore_Load(t *testing.T) {
	t.Run("Should load sections into the store", func(t *testing.T) {
		ctx := newTestContext(t)
		a, fs := newMemoryAnswerStore(t)
		content := `[remediate]
confirm = true
retries = 2

[upgrade]
mode = fast
`
		require.NoError(t, afero.WriteFile(fs, "answers", []byte(content), 0o644))
		require.NoError(t, a.Load(ctx, "answers"))

		entry, err := a.Get(ctx, "remediate")
		require.NoError(t, err)
		assert.Equal(t, Entry{"confirm": "true", "retries": "2"}, entry)

		scopes, err := a.Scopes(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"remediate", "upgrade"}, scopes)
	})

	t.Run("Should ignore a missing file", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		require.NoError(t, a.Load(ctx, "no-such-file"))
		scopes, err := a.Scopes(ctx)
		require.NoError(t, err)
		assert.Empty(t, scopes)
	})

	t.Run("Should surface parse failures", func(t *testing.T) {
		ctx := newTestContext(t)
		a, fs := newMemoryAnswerStore(t)
		require.NoError(t, afero.WriteFile(fs, "answers", []byte("confirm = true\n"), 0o644))
		err := a.Load(ctx, "answers")
		require.ErrorIs(t, err, ErrParse)
	})

	t.Run("Should replace a loaded scope wholesale", func(t *testing.T) {
		ctx := newTestContext(t)
		a, fs := newMemoryAnswerStore(t)
		require.NoError(t, a.Answer(ctx, "remediate", "stale", "yes"))
		require.NoError(t, afero.WriteFile(fs, "answers", []byte("[remediate]\nconfirm = true\n"), 0o644))
		require.NoError(t, a.Load(ctx, "answers"))
		entry, err := a.Get(ctx, "remediate")
		require.NoError(t, err)
		assert.Equal(t, Entry{"confirm": "true"}, entry)
	})
}

func TestAnswerStore_Translate(t *testing.T) {
	t.Run("Should coerce raw strings to their declared types", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		d := remediationDialog()
		raw := Entry{
			"confirm":  "True",
			"retries":  "2",
			"features": "reboot;unknown;checks;reboot",
			"mode":     "fast",
			"note":     "resize before reboot",
		}
		require.NoError(t, a.Store().Put(ctx, d.Scope, raw))

		require.NoError(t, a.Translate(ctx, d))

		entry, err := a.Get(ctx, d.Scope)
		require.NoError(t, err)
		assert.Equal(t, Entry{
			"confirm":  true,
			"retries":  2,
			"features": []string{"checks", "reboot"},
			"mode":     "fast",
			"note":     "resize before reboot",
		}, entry)
		assert.Equal(t, true, d.Components[0].Value)
		assert.Equal(t, 2, d.Components[1].Value)
		assert.Equal(t, []string{"checks", "reboot"}, d.Components[2].Value)
		assert.Equal(t, "fast", d.Components[3].Value)
		assert.Equal(t, "resize before reboot", d.Components[4].Value)
	})

	t.Run("Should leave typed values alone on a second pass", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		d := remediationDialog()
		require.NoError(t, a.Store().Put(ctx, d.Scope, Entry{"confirm": "true", "retries": "2"}))
		require.NoError(t, a.Translate(ctx, d))
		first, err := a.Get(ctx, d.Scope)
		require.NoError(t, err)

		require.NoError(t, a.Translate(ctx, d))
		second, err := a.Get(ctx, d.Scope)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Should nil out a non-member choice answer", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		d := remediationDialog()
		require.NoError(t, a.Store().Put(ctx, d.Scope, Entry{"mode": "turbo"}))

		require.NoError(t, a.Translate(ctx, d))

		entry, err := a.Get(ctx, d.Scope)
		require.NoError(t, err)
		v, ok := entry["mode"]
		require.True(t, ok)
		assert.Nil(t, v)
		assert.Nil(t, d.Components[3].Value)
	})

	t.Run("Should translate an empty multi-choice answer to an empty list", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		d := remediationDialog()
		require.NoError(t, a.Store().Put(ctx, d.Scope, Entry{"features": ""}))

		require.NoError(t, a.Translate(ctx, d))

		entry, err := a.Get(ctx, d.Scope)
		require.NoError(t, err)
		assert.Equal(t, []string{}, entry["features"])
	})

	t.Run("Should set component values even for unanswered keys", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		d := remediationDialog()
		d.Components[4].Value = "leftover"
		require.NoError(t, a.Store().Put(ctx, d.Scope, Entry{"confirm": "true"}))

		require.NoError(t, a.Translate(ctx, d))

		assert.Nil(t, d.Components[4].Value)
		entry, err := a.Get(ctx, d.Scope)
		require.NoError(t, err)
		_, ok := entry["note"]
		assert.False(t, ok)
	})

	t.Run("Should do nothing for an unanswered scope", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		d := remediationDialog()
		d.Components[0].Value = "leftover"

		require.NoError(t, a.Translate(ctx, d))

		assert.Equal(t, "leftover", d.Components[0].Value)
		entry, err := a.Get(ctx, d.Scope)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("Should abort on an unparsable integer without writing back", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		d := remediationDialog()
		require.NoError(t, a.Store().Put(ctx, d.Scope, Entry{"confirm": "true", "retries": "many"}))

		err := a.Translate(ctx, d)
		require.ErrorIs(t, err, dialog.ErrCoerce)

		entry, getErr := a.Get(ctx, d.Scope)
		require.NoError(t, getErr)
		assert.Equal(t, Entry{"confirm": "true", "retries": "many"}, entry)
	})
}

func upgradeWorkflow(framework, main *dialog.Dialog) *workflow.Config {
	return &workflow.Config{
		ID: "upgrade",
		Phases: []workflow.Phase{
			{
				Name: "checks",
				Stages: []workflow.Stage{
					{Name: "before", Actors: []workflow.Actor{{ID: "boot", Dialogs: []*dialog.Dialog{framework}}}},
					{Name: "main", Actors: []workflow.Actor{{ID: "scan", Dialogs: []*dialog.Dialog{main}}}},
				},
			},
		},
	}
}

func TestAnswerStore_TranslateForWorkflow(t *testing.T) {
	t.Run("Should translate dialogs from every stage after the first", func(t *testing.T) {
		ctx := newTestContext(t)
		a, _ := newMemoryAnswerStore(t)
		framework := &dialog.Dialog{
			Scope:      "framework",
			Components: []*dialog.Component{{Key: "verbose", Type: dialog.ValueBool}},
		}
		main := remediationDialog()
		wf := upgradeWorkflow(framework, main)
		require.NoError(t, a.Store().Put(ctx, "framework", Entry{"verbose": "true"}))
		require.NoError(t, a.Store().Put(ctx, "remediate", Entry{"confirm": "true"}))

		require.NoError(t, a.TranslateForWorkflow(ctx, wf))

		frameworkEntry, err := a.Get(ctx, "framework")
		require.NoError(t, err)
		assert.Equal(t, "true", frameworkEntry["verbose"])
		assert.Nil(t, framework.Components[0].Value)

		mainEntry, err := a.Get(ctx, "remediate")
		require.NoError(t, err)
		assert.Equal(t, true, mainEntry["confirm"])
		assert.Equal(t, true, main.Components[0].Value)
	})
}

func TestAnswerStore_LoadAndTranslateForWorkflow(t *testing.T) {
	t.Run("Should produce typed answers straight from a file", func(t *testing.T) {
		ctx := newTestContext(t)
		a, fs := newMemoryAnswerStore(t)
		main := remediationDialog()
		wf := upgradeWorkflow(&dialog.Dialog{Scope: "framework"}, main)
		content := `[remediate]
confirm = true
retries = 4
features = backup;checks
mode = safe
`
		require.NoError(t, afero.WriteFile(fs, "answers", []byte(content), 0o644))

		require.NoError(t, a.LoadAndTranslateForWorkflow(ctx, "answers", wf))

		entry, err := a.Get(ctx, "remediate")
		require.NoError(t, err)
		assert.Equal(t, Entry{
			"confirm":  true,
			"retries":  4,
			"features": []string{"checks", "backup"},
			"mode":     "safe",
		}, entry)
	})
}

func TestAnswerStore_SharedStore(t *testing.T) {
	t.Run("Should share answers across handles through one coordinator", func(t *testing.T) {
		ctx := newTestContext(t)
		_, r := newTestRedis(t)
		shared := NewRedisStore(r)
		writer := New(WithStore(shared))
		reader := New(WithStore(NewRedisStore(r)))

		require.NoError(t, writer.Answer(ctx, "remediate", "confirm", true))

		entry, err := reader.Get(ctx, "remediate")
		require.NoError(t, err)
		assert.Equal(t, Entry{"confirm": true}, entry)
	})
}
