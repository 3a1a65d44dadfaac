package organizer_test

import (
	"errors"
	"testing"

	"camorg/internal/organizer"
	"camorg/internal/testutil"
)

func TestPruner_Prune(t *testing.T) {
	tests := []struct {
		name        string
		files       []string
		dirs        []string
		marker      string
		wantRemoved int
		wantKept    []string
		wantGone    []string
	}{
		{
			name:        "only empty leaves",
			dirs:        []string{testDest + "/2015/04/13", testDest + "/2015/05", testDest + "/2016"},
			marker:      organizer.DefaultMarker,
			wantRemoved: 6,
			wantGone:    []string{testDest, testDest + "/2015"},
		},
		{
			name:        "one non-empty leaf keeps its ancestors",
			files:       []string{testDest + "/2015/04/13/2015-04-13 10.30.00.jpg"},
			dirs:        []string{testDest + "/2015/04/14", testDest + "/2016/01"},
			marker:      organizer.DefaultMarker,
			wantRemoved: 3,
			wantKept:    []string{testDest, testDest + "/2015", testDest + "/2015/04", testDest + "/2015/04/13/2015-04-13 10.30.00.jpg"},
			wantGone:    []string{testDest + "/2015/04/14", testDest + "/2016"},
		},
		{
			name:        "marker-only directory counts as empty",
			files:       []string{testDest + "/2015/.dropbox", testDest + "/keep.jpg"},
			marker:      organizer.DefaultMarker,
			wantRemoved: 1,
			wantKept:    []string{testDest + "/keep.jpg"},
			wantGone:    []string{testDest + "/2015"},
		},
		{
			name:        "marker disabled",
			files:       []string{testDest + "/2015/.dropbox", testDest + "/keep.jpg"},
			wantRemoved: 0,
			wantKept:    []string{testDest + "/2015/.dropbox"},
		},
		{
			name:        "marker next to another entry",
			files:       []string{testDest + "/2015/.dropbox", testDest + "/2015/a.jpg"},
			marker:      organizer.DefaultMarker,
			wantRemoved: 0,
			wantKept:    []string{testDest + "/2015/.dropbox", testDest + "/2015/a.jpg"},
		},
		{
			name:        "directory that becomes marker-only after pruning",
			files:       []string{testDest + "/2015/.dropbox"},
			dirs:        []string{testDest + "/2015/04"},
			marker:      organizer.DefaultMarker,
			wantRemoved: 3,
			wantGone:    []string{testDest},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fsmgr := testutil.NewMockFilesystemManager()
			for _, f := range tt.files {
				fsmgr.AddFile(f, nil)
			}
			for _, d := range tt.dirs {
				fsmgr.AddDirectory(d)
			}

			p := organizer.NewPruner(fsmgr, testutil.NewRecordingLogger(), tt.marker)
			if got := p.Prune(testDest); got != tt.wantRemoved {
				t.Errorf("Prune() = %d, want %d; left %v", got, tt.wantRemoved, fsmgr.Paths())
			}
			for _, path := range tt.wantKept {
				if !fsmgr.Exists(path) {
					t.Errorf("expected %s to be kept", path)
				}
			}
			for _, path := range tt.wantGone {
				if fsmgr.Exists(path) {
					t.Errorf("expected %s to be removed", path)
				}
			}
		})
	}
}

func TestPruner_NotADirectory(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddFile(testDest+"/a.jpg", nil)

	p := organizer.NewPruner(fsmgr, testutil.NewRecordingLogger(), organizer.DefaultMarker)
	if got := p.Prune(testDest + "/a.jpg"); got != 0 {
		t.Errorf("Prune(file) = %d, want 0", got)
	}
	if got := p.Prune("/does/not/exist"); got != 0 {
		t.Errorf("Prune(missing) = %d, want 0", got)
	}
	if !fsmgr.Exists(testDest + "/a.jpg") {
		t.Error("file was removed")
	}
}

func TestPruner_RemoveFailureIsLogged(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddDirectory(testDest + "/2015/04")
	fsmgr.AddDirectory(testDest + "/2016/01")
	fsmgr.FailRemove(testDest+"/2015/04", errors.New("permission denied"))

	logger := testutil.NewRecordingLogger()
	p := organizer.NewPruner(fsmgr, logger, organizer.DefaultMarker)

	// 2016/01 and 2016 go; 2015/04 fails, so 2015 and the root stay.
	if got := p.Prune(testDest); got != 2 {
		t.Errorf("Prune() = %d, want 2", got)
	}
	if !fsmgr.IsDir(testDest + "/2015/04") {
		t.Error("directory that failed to be removed is gone")
	}
	if fsmgr.Exists(testDest + "/2016") {
		t.Error("prune stopped after a failure")
	}
	if got := logger.Count("ERROR", "failed to remove directory"); got != 1 {
		t.Errorf("logged %d removal failures, want 1", got)
	}
}
