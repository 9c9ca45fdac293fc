package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnPackStart(ctx, "bom.zip")
	p.OnPackComplete(ctx, "bom.zip", 100, 2, time.Second, nil)
	p.OnUnpackStart(ctx, "bom.zip")
	p.OnUnpackComplete(ctx, "bom.zip", 100, 2, time.Second, errors.New("boom"))

	// Archive hooks
	a := NoopArchiveHooks{}
	a.OnEntryWritten("chunks/000001.jsonld", 10, 1024, time.Millisecond)
	a.OnEntryRead("chunks/000001.jsonld", 10, 1024, time.Millisecond)
	a.OnFailed("write", errors.New("disk full"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Archive().(NoopArchiveHooks); !ok {
		t.Error("Archive() should return NoopArchiveHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customArchive := &testArchiveHooks{}
	SetArchiveHooks(customArchive)
	if Archive() != customArchive {
		t.Error("SetArchiveHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Archive().(NoopArchiveHooks); !ok {
		t.Error("Reset() should restore NoopArchiveHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testArchiveHooks{}
	SetArchiveHooks(custom)

	// Setting nil should be ignored
	SetArchiveHooks(nil)

	if Archive() != custom {
		t.Error("SetArchiveHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testArchiveHooks struct{ NoopArchiveHooks }
