package handlers

import (
	"fmt"

	apperrors "github.com/webrana/adminmail-backend/internal/errors"
	"github.com/webrana/adminmail-backend/internal/models"
)

// Mailbox actions. Single and bulk mutation share this table; bulk excludes
// the label actions because they need the record's current label set.
const (
	actionMarkAsRead = "markAsRead"
	actionStar       = "star"
	actionImportant  = "important"
	actionArchive    = "archive"
	actionDelete     = "delete"
	actionMove       = "move"
	actionLabel      = "label"
	actionUnlabel    = "unlabel"
)

// changesForAction translates a mailbox action into the field changes it
// implies. Flag actions never touch the folder and folder actions never
// touch flags. delete is a soft delete: the record moves to trash, nothing
// is removed.
func changesForAction(action string, value interface{}) (map[string]interface{}, error) {
	switch action {
	case actionMarkAsRead:
		return map[string]interface{}{"is_read": boolValue(value)}, nil
	case actionStar:
		return map[string]interface{}{"is_starred": boolValue(value)}, nil
	case actionImportant:
		return map[string]interface{}{"is_important": boolValue(value)}, nil
	case actionArchive:
		return map[string]interface{}{"folder": models.FolderArchive}, nil
	case actionDelete:
		return map[string]interface{}{"folder": models.FolderTrash}, nil
	case actionMove:
		folder, _ := value.(string)
		if !models.ValidFolder(folder) {
			return nil, fmt.Errorf("%w: %q is not a folder", apperrors.ErrInvalidFolder, folder)
		}
		// Only the dispatch service creates sent records.
		if folder == models.FolderSent {
			return nil, fmt.Errorf("%w: emails cannot be moved into sent", apperrors.ErrInvalidFolder)
		}
		return map[string]interface{}{"folder": folder}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidAction, action)
	}
}

// boolValue coerces a JSON action value to a bool. A missing value means
// "set", matching what the mail UI sends for markAsRead without a toggle.
func boolValue(value interface{}) bool {
	if v, ok := value.(bool); ok {
		return v
	}
	return true
}

// applyLabelChange computes the new label set for the label/unlabel actions
func applyLabelChange(current []string, action, label string) []string {
	switch action {
	case actionLabel:
		for _, l := range current {
			if l == label {
				return current
			}
		}
		return append(append([]string{}, current...), label)
	case actionUnlabel:
		out := make([]string, 0, len(current))
		for _, l := range current {
			if l != label {
				out = append(out, l)
			}
		}
		return out
	}
	return current
}
