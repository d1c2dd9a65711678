// Package share delivers a rendered summary to a share target or the
// clipboard.
package share

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupported means the platform has no share target.
	ErrUnsupported = errors.New("share is not supported")
	// ErrCancelled means the user dismissed the share target.
	ErrCancelled = errors.New("share cancelled")
)

const (
	UnsupportedNotice = "공유 기능을 지원하지 않는 브라우저입니다. 내역이 클립보드에 복사되었습니다."
	CopiedNotice      = "복사되었습니다."
)

type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

type Sharer interface {
	Share(ctx context.Context, title, body string) error
}

// Result reports what Deliver ended up doing.
type Result struct {
	Shared bool
	Copied bool
	// Notice is set when the user should be told about a fallback.
	Notice string
}

// Deliver tries the share target first. A cancelled share does nothing
// else. An unsupported share falls back to the clipboard with a notice;
// any other share failure falls back to the clipboard silently. A nil
// sharer counts as unsupported.
func Deliver(ctx context.Context, sharer Sharer, clipboard Clipboard, title, body string) (Result, error) {
	err := ErrUnsupported
	if sharer != nil {
		err = sharer.Share(ctx, title, body)
	}

	switch {
	case err == nil:
		return Result{Shared: true}, nil
	case errors.Is(err, ErrCancelled):
		return Result{}, nil
	}

	var res Result
	if errors.Is(err, ErrUnsupported) {
		res.Notice = UnsupportedNotice
	}
	if clipboard == nil {
		return res, fmt.Errorf("copy fallback: no clipboard: %w", err)
	}
	if cerr := clipboard.Copy(ctx, body); cerr != nil {
		return res, fmt.Errorf("copy fallback: %w", cerr)
	}
	res.Copied = true
	return res, nil
}
