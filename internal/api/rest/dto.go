package rest

import (
	"grape-bot/internal/domain/entity"
)

type selectionView struct {
	Name     string  `json:"name"`
	MIMEType string  `json:"mime_type"`
	Size     int64   `json:"size"`
	SizeMB   float64 `json:"size_mb"`
}

type errorView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// stateView состояние сессии в ответах API. Данные файла не передаются,
// миниатюра доступна через /preview.
type stateView struct {
	SessionID  string             `json:"session_id"`
	Section    string             `json:"section"`
	Selection  *selectionView     `json:"selection,omitempty"`
	Validated  bool               `json:"validated"`
	Loading    bool               `json:"loading"`
	CanAnalyze bool               `json:"can_analyze"`
	Prediction *entity.Prediction `json:"prediction,omitempty"`
	Error      *errorView         `json:"error,omitempty"`
	Generation uint64             `json:"generation"`
}

type sectionRequest struct {
	Section string `json:"section" binding:"required"`
}

func newStateView(u *entity.User) stateView {
	st := u.State
	v := stateView{
		SessionID:  u.ID,
		Section:    string(st.Section),
		Validated:  st.Validated,
		Loading:    st.Loading,
		CanAnalyze: st.CanScan() == nil,
		Prediction: st.Prediction,
		Generation: st.Generation,
	}
	if sel := st.Selection; sel != nil {
		v.Selection = &selectionView{
			Name:     sel.Name,
			MIMEType: sel.MIMEType,
			Size:     sel.Size,
			SizeMB:   sel.SizeMB(),
		}
	}
	if st.Err != nil {
		v.Error = &errorView{Kind: string(st.Err.Kind), Message: st.Err.Message}
	}
	return v
}
