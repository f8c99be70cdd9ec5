package web

import (
	"bytes"
	"html/template"
	"log/slog"
	"strings"

	"github.com/jaminalder/tictactoe-arena/internal/app"
	"github.com/jaminalder/tictactoe-arena/internal/domain"
	"github.com/jaminalder/tictactoe-arena/internal/engine"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"upper": strings.ToUpper,
		"modes": func() []engine.Mode { return engine.Modes },
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1>
{{range modes}}<form action="/game" method="post"><input type="hidden" name="mode" value="{{.}}"><button>{{upper (print .)}}</button></form>
{{end}}`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<nav id="modes">
{{range modes}}  <form hx-post="/game/{{$.ID}}/mode" hx-target="#board" hx-swap="outerHTML" method="post"><input type="hidden" name="mode" value="{{.}}"><button>{{upper (print .)}}</button></form>
{{end}}  <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post"><button id="reset">Reset board</button></form>
  <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post"><button id="restart">Reset score</button></form>
</nav>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events" sse-swap="board">
  {{template "board" .}}
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	var err error
	if name == "" {
		err = t.Execute(&buf, data)
	} else {
		err = t.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		slog.Error("render template", "template", t.Name(), "err", err)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board" data-mode="{{.Mode}}">
  <div id="game-status">{{.Status}}</div>
  <div id="scores">
    <span id="player1-score">{{.ScoreX}}</span>
    <span id="draws">{{.Draws}}</span>
    <span id="player2-score">{{.ScoreO}}</span>
  </div>
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  {{/* 3x3 grid */}}
  {{range .Rows}}
  <div class="row">
    {{range .}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="i" value="{{.Index}}">
        <button type="submit" class="cell" data-index="{{.Index}}"{{if not .Playable}} disabled{{end}}>{{.Symbol}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
</div>
`

type cellView struct {
	Index    int
	Symbol   string
	Playable bool
}

// boardView is the data behind the board fragment.
type boardView struct {
	ID     string
	Mode   engine.Mode
	Status string
	ScoreX int
	ScoreO int
	Draws  int
	Error  string
	Rows   [3][3]cellView
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	v := boardView{
		ID:     gs.ID,
		Mode:   gs.Mode,
		Status: gs.Status(),
		ScoreX: gs.ScoreX,
		ScoreO: gs.ScoreO,
		Draws:  gs.Draws,
		Error:  errMsg,
	}
	humanTurn := !gs.Game.Over && !gs.AIPending && !gs.Mode.AIPlays(gs.Game.Turn)
	for i, c := range gs.Game.Board {
		v.Rows[i/3][i%3] = cellView{
			Index:    i,
			Symbol:   c.String(),
			Playable: humanTurn && c == domain.Empty,
		}
	}
	return v
}
