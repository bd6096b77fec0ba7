package model

import (
	"path"
	"regexp"
	"strings"

	"crewdesk.app/core/common"
	"crewdesk.app/core/core/apperr"
)

// Self-validating scalars. Construction either succeeds with a value that is
// known-good for the rest of its life, or fails with a validation error
// naming the rule that was violated.

const (
	nameMinLen          = 2
	nameMaxLen          = 255
	workspaceNameMinLen = 3
	workspaceNameMaxLen = 100
	taskTitleMinLen     = 3
	taskTitleMaxLen     = 255
	commentMinLen       = 3
	commentMaxLen       = 2000
	fileNameMaxLen      = 255
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Name string

func NewName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	if len(s) < nameMinLen {
		return "", apperr.Validation("name must be at least %d characters", nameMinLen)
	}
	if len(s) > nameMaxLen {
		return "", apperr.Validation("name must be at most %d characters", nameMaxLen)
	}
	return Name(s), nil
}

func (n Name) String() string { return string(n) }

type Email string

func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if !emailPattern.MatchString(s) {
		return "", apperr.Validation("invalid email address format")
	}
	return Email(s), nil
}

func (e Email) String() string { return string(e) }

// WorkspaceName is a workspace display name; it also derives the workspace
// slug.
type WorkspaceName string

func NewWorkspaceName(s string) (WorkspaceName, error) {
	s = strings.TrimSpace(s)
	if len(s) < workspaceNameMinLen {
		return "", apperr.Validation("workspace name must be at least %d characters", workspaceNameMinLen)
	}
	if len(s) > workspaceNameMaxLen {
		return "", apperr.Validation("workspace name must be at most %d characters", workspaceNameMaxLen)
	}
	return WorkspaceName(s), nil
}

func (n WorkspaceName) String() string { return string(n) }

// Slug derives the lowercase hyphenated slug for the name. Names made
// entirely of non-slug characters cannot produce one.
func (n WorkspaceName) Slug() (string, error) {
	slug, err := common.Slugify(string(n))
	if err != nil {
		return "", apperr.ValidationWrap(err, "cannot derive slug from workspace name %q", string(n))
	}
	return slug, nil
}

type TaskTitle string

func NewTaskTitle(s string) (TaskTitle, error) {
	s = strings.TrimSpace(s)
	if len(s) < taskTitleMinLen {
		return "", apperr.Validation("task title must be at least %d characters", taskTitleMinLen)
	}
	if len(s) > taskTitleMaxLen {
		return "", apperr.Validation("task title must be at most %d characters", taskTitleMaxLen)
	}
	return TaskTitle(s), nil
}

func (t TaskTitle) String() string { return string(t) }

type CommentContent string

func NewCommentContent(s string) (CommentContent, error) {
	s = strings.TrimSpace(s)
	if len(s) < commentMinLen {
		return "", apperr.Validation("comment must be at least %d characters", commentMinLen)
	}
	if len(s) > commentMaxLen {
		return "", apperr.Validation("comment must be at most %d characters", commentMaxLen)
	}
	return CommentContent(s), nil
}

func (c CommentContent) String() string { return string(c) }

type FileName string

func NewFileName(s string) (FileName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation("file name is required")
	}
	if len(s) > fileNameMaxLen {
		return "", apperr.Validation("file name must be at most %d characters", fileNameMaxLen)
	}
	if strings.ContainsAny(s, "/\\") {
		return "", apperr.Validation("file name must not contain path separators")
	}
	return FileName(s), nil
}

func (f FileName) String() string { return string(f) }

// FilePath is a storage path confined to the attachment namespace.
type FilePath string

func NewFilePath(s, namespace string) (FilePath, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation("file path is required")
	}
	cleaned := path.Clean(s)
	if cleaned != s {
		return "", apperr.Validation("file path must be in canonical form")
	}
	if !strings.HasPrefix(cleaned, namespace+"/") {
		return "", apperr.Validation("file path must live under %q", namespace)
	}
	if strings.Contains(cleaned, "..") {
		return "", apperr.Validation("file path must not traverse directories")
	}
	return FilePath(cleaned), nil
}

func (f FilePath) String() string { return string(f) }
