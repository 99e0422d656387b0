package entity

import "time"

// Default geometry for freshly created windows.
const (
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 800
)

// BrowserWindow is one top-level window. ClosedOn is stamped exactly once,
// together with the final geometry snapshot, when the window closes.
type BrowserWindow struct {
	ID          int64      `json:"id"`
	X           int        `json:"x"`
	Y           int        `json:"y"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	IsMaximized bool       `json:"is_maximized"`
	ClosedOn    *time.Time `json:"closed_on,omitempty"`
}

// Geometry is a window position/size snapshot.
type Geometry struct {
	X           int  `json:"x"`
	Y           int  `json:"y"`
	Width       int  `json:"width"`
	Height      int  `json:"height"`
	IsMaximized bool `json:"is_maximized"`
}

// Geometry returns the window's geometry snapshot.
func (w *BrowserWindow) Geometry() Geometry {
	return Geometry{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height, IsMaximized: w.IsMaximized}
}
