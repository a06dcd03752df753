package models

import (
	"errors"
	"os"
	"testing"
	"time"
)

// ============== SortOperation Tests ==============

func validOperation() *SortOperation {
	return &SortOperation{
		ID:             "op-1",
		WatchRoot:      "/home/user/Downloads",
		EmptyExtension: EmptyExtLiteral,
		UnsortedBucket: DefaultUnsortedBucket,
		Collision:      CollisionOverwrite,
		Delay:          time.Second,
		CreatedAt:      time.Now(),
	}
}

func TestSortOperationValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(op *SortOperation)
		wantErr bool
		field   string
	}{
		{"Valid", func(op *SortOperation) {}, false, ""},
		{"MissingRoot", func(op *SortOperation) { op.WatchRoot = "" }, true, "WatchRoot"},
		{"BadEmptyPolicy", func(op *SortOperation) { op.EmptyExtension = "drop" }, true, "EmptyExtension"},
		{"BucketPolicy", func(op *SortOperation) { op.EmptyExtension = EmptyExtBucket }, false, ""},
		{"BucketWithoutName", func(op *SortOperation) {
			op.EmptyExtension = EmptyExtBucket
			op.UnsortedBucket = ""
		}, true, "UnsortedBucket"},
		{"BucketWithSeparator", func(op *SortOperation) {
			op.EmptyExtension = EmptyExtBucket
			op.UnsortedBucket = "a/b"
		}, true, "UnsortedBucket"},
		{"LiteralIgnoresBucketName", func(op *SortOperation) { op.UnsortedBucket = "" }, false, ""},
		{"BadCollision", func(op *SortOperation) { op.Collision = "rename" }, true, "Collision"},
		{"RefuseCollision", func(op *SortOperation) { op.Collision = CollisionRefuse }, false, ""},
		{"NegativeDelay", func(op *SortOperation) { op.Delay = -time.Second }, true, "Delay"},
		{"ZeroDelay", func(op *SortOperation) { op.Delay = 0 }, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := validOperation()
			tt.mutate(op)

			err := op.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T, want *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %s, want %s", verr.Field, tt.field)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "Collision", Message: "must be 'overwrite' or 'refuse'"}
	want := "Collision: must be 'overwrite' or 'refuse'"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

// ============== Failure Tests ==============

func TestFailure(t *testing.T) {
	t.Run("WrapsCause", func(t *testing.T) {
		f := Failure{Path: "/root/a.txt", Stage: StageMove, Err: os.ErrNotExist}
		if !errors.Is(f, os.ErrNotExist) {
			t.Error("Failure should unwrap to its cause")
		}
		if f.Error() != "move /root/a.txt: "+os.ErrNotExist.Error() {
			t.Errorf("Error() = %q", f.Error())
		}
	})

	t.Run("NoCause", func(t *testing.T) {
		f := Failure{Path: "/root/a.txt", Stage: StageMkdir}
		if f.Error() != "mkdir /root/a.txt" {
			t.Errorf("Error() = %q", f.Error())
		}
	})
}

// ============== SortReport Tests ==============

func TestSortReportRecord(t *testing.T) {
	report := &SortReport{StartTime: time.Now()}

	report.Record(Notification{MovedFile: "a.pdf", Action: ActionMoved, DirCreated: true})
	report.Record(Notification{MovedFile: "b.pdf", Action: ActionMoved})
	report.Record(Notification{MovedFile: "notes", Action: ActionInPlace})
	report.Record(Notification{MovedFile: "pdf", Action: ActionSkipped})
	report.Record(Notification{MovedFile: "c.jpg", Action: ActionFailed})

	if report.Stats.Moved != 2 {
		t.Errorf("Moved = %d, want 2", report.Stats.Moved)
	}
	if report.Stats.InPlace != 1 {
		t.Errorf("InPlace = %d, want 1", report.Stats.InPlace)
	}
	if report.Stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", report.Stats.Skipped)
	}
	if report.Stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Stats.Failed)
	}
	if report.Stats.DirsCreated != 1 {
		t.Errorf("DirsCreated = %d, want 1", report.Stats.DirsCreated)
	}
	if len(report.Relocations) != 5 {
		t.Errorf("len(Relocations) = %d, want 5", len(report.Relocations))
	}
}

func TestSortReportFinish(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		report := &SortReport{StartTime: time.Now()}
		report.Record(Notification{Action: ActionMoved})
		report.Finish()
		if report.Status != StatusSuccess {
			t.Errorf("Status = %s, want success", report.Status)
		}
		if report.EndTime.Before(report.StartTime) {
			t.Error("EndTime should not be before StartTime")
		}
	})

	t.Run("Partial", func(t *testing.T) {
		report := &SortReport{StartTime: time.Now()}
		report.Record(Notification{Action: ActionMoved})
		report.Record(Notification{Action: ActionFailed})
		report.Finish()
		if report.Status != StatusPartial {
			t.Errorf("Status = %s, want partial", report.Status)
		}
	})

	t.Run("KeepsPresetStatus", func(t *testing.T) {
		report := &SortReport{StartTime: time.Now(), Status: StatusCancelled}
		report.Finish()
		if report.Status != StatusCancelled {
			t.Errorf("Status = %s, want cancelled", report.Status)
		}
	})
}

func TestSortStatusExitCode(t *testing.T) {
	tests := []struct {
		status   SortStatus
		expected int
	}{
		{StatusSuccess, 0},
		{StatusPartial, 1},
		{StatusFailed, 2},
		{StatusCancelled, 3},
		{SortStatus("unknown"), 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}
