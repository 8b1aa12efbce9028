package converter

import "context"

// Passthrough übernimmt PDF-Bytes und Dateinamen unverändert.
type Passthrough struct{}

// Name implementiert Converter.
func (Passthrough) Name() string { return MethodNone }

// Convert implementiert Converter.
func (Passthrough) Convert(_ context.Context, content []byte, filename string) Outcome {
	return Outcome{Stage: MethodNone, Result: Result{
		Content:  content,
		Filename: filename,
		Method:   MethodNone,
	}}
}
