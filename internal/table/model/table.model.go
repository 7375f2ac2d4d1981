package model

import (
	"time"
)

// Table is a stored document. The id travels in the URL, so it is not part of
// the response body.
type Table struct {
	ID        string     `json:"-"`
	Owner     string     `json:"owner"`
	Title     string     `json:"title"`
	MainData  Object     `json:"main_data"`
	Template  List       `json:"template"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type TableSummary struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// TablePatch carries the fields an update may overwrite. Empty fields keep
// their stored value.
type TablePatch struct {
	Title    string
	MainData Object
	Template List
}

func (p TablePatch) IsEmpty() bool {
	return p.Title == "" && len(p.MainData) == 0 && len(p.Template) == 0
}

type UpdateTableRequest struct {
	Owner    string `json:"owner"` // credential token of the caller
	Title    string `json:"title"`
	MainData Object `json:"main_data"`
	Template List   `json:"template"`
}

func (r UpdateTableRequest) Patch() TablePatch {
	return TablePatch{Title: r.Title, MainData: r.MainData, Template: r.Template}
}

type CredentialRequest struct {
	UserID string `json:"user_id"` // credential token of the caller
}

type DeleteUserResponse struct {
	Deleted int64 `json:"deleted"`
}
