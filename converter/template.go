package converter

import (
	"html/template"
	"strings"
)

// printTemplate ist das druckorientierte Layout für alle HTML-basierten Stufen (A4, 2cm Ränder, Serifenschrift).
var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: A4; margin: 2cm; }
body { font-family: 'Times New Roman', serif; font-size: 12pt; line-height: 1.6; text-align: justify; color: #000; }
.title { font-size: 20pt; font-weight: bold; text-align: center; margin-bottom: 16pt; }
.author, .date { font-size: 12pt; font-weight: normal; text-align: center; margin-bottom: 12pt; font-style: italic; }
h1, h2 { font-size: 16pt; font-weight: bold; margin-top: 20pt; margin-bottom: 12pt; }
h3 { font-size: 14pt; font-weight: bold; margin-top: 16pt; margin-bottom: 10pt; }
h4, h5, h6 { font-size: 12pt; font-weight: bold; margin-top: 12pt; margin-bottom: 8pt; }
p { margin-bottom: 12pt; text-indent: 0; }
ul, ol { margin-bottom: 12pt; padding-left: 30pt; }
li { margin-bottom: 6pt; }
blockquote { margin: 12pt 20pt; padding: 8pt; border-left: 3pt solid #ccc; font-style: italic; }
code { font-family: 'Courier New', monospace; background-color: #f5f5f5; padding: 2pt; }
table { border-collapse: collapse; margin: 12pt 0; }
td, th { border: 1pt solid #999; padding: 4pt; }
.math-block { text-align: center; margin: 12pt 0; font-family: 'Times New Roman', serif; }
.math-inline { font-family: 'Times New Roman', serif; }
.figure, .table { text-align: center; margin: 20pt 0; padding: 10pt; border: 1pt solid #ccc; background-color: #f9f9f9; }
strong { font-weight: bold; }
em { font-style: italic; }
u { text-decoration: underline; }
</style>
</head>
<body>
<div>{{.Content}}</div>
</body>
</html>
`))

// WrapHTML bettet einen HTML-Fragment-Körper in das Drucklayout ein.
func WrapHTML(content, title string) (string, error) {
	var sb strings.Builder
	err := printTemplate.Execute(&sb, struct {
		Title   string
		Content template.HTML
	}{Title: title, Content: template.HTML(content)})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
