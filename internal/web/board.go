package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Board renders the public list of games still accepting players.
func Board(data BoardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Pickleball Games</title>
    <style>
      body { font-family: system-ui, sans-serif; margin: 0; background: #f4f7f2; color: #1d2b1f; }
      .shell { max-width: 760px; margin: 0 auto; padding: 24px 16px; }
      .game { background: #fff; border-radius: 10px; padding: 16px; margin-bottom: 12px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
      .meta { color: #5b6b5d; font-size: 14px; }
      .tag { display: inline-block; padding: 2px 8px; border-radius: 999px; background: #dcefd8; font-size: 12px; }
      .pager { display: flex; justify-content: space-between; margin-top: 16px; }
    </style>
  </head>
  <body>
    <main class="shell">
      <header>
        <h1>Open games</h1>
        <p class="meta">Dates and times are local to `)
		b.WriteString(esc(data.Timezone))
		b.WriteString(`.</p>
      </header>
`)
		if len(data.Games) == 0 {
			b.WriteString(`      <p class="empty">No open games right now. Create one from the app.</p>
`)
		}
		for _, game := range data.Games {
			b.WriteString(`      <article class="game" data-game-id="`)
			b.WriteString(esc(game.ID))
			b.WriteString(`">
        <h2>`)
			b.WriteString(esc(game.Location))
			b.WriteString(`</h2>
        <p class="meta">`)
			b.WriteString(esc(game.Date))
			b.WriteString(` &middot; `)
			b.WriteString(esc(game.StartTime))
			b.WriteString(`&ndash;`)
			b.WriteString(esc(game.EndTime))
			b.WriteString(` &middot; hosted by `)
			b.WriteString(esc(game.HostName))
			b.WriteString(`</p>
        <span class="tag">`)
			b.WriteString(esc(game.SkillLevel))
			b.WriteString(`</span>
        <span class="tag">`)
			b.WriteString(esc(slotsLabel(game.OpenSlots)))
			b.WriteString(` of `)
			b.WriteString(itoa(game.MaxPlayers))
			b.WriteString(`</span>
`)
			if game.Notes != "" {
				b.WriteString(`        <p>`)
				b.WriteString(esc(game.Notes))
				b.WriteString(`</p>
`)
			}
			b.WriteString(`      </article>
`)
		}
		writePager(&b, data.Pagination)
		b.WriteString(`    </main>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writePager(b *strings.Builder, p PaginationData) {
	if !p.HasPrev && !p.HasNext {
		return
	}
	b.WriteString(`      <nav class="pager">
`)
	if p.HasPrev {
		b.WriteString(`        <a href="`)
		b.WriteString(esc(pageURL(p.BasePath, p.PrevPage, p.PerPage)))
		b.WriteString(`">Previous</a>
`)
	} else {
		b.WriteString(`        <span></span>
`)
	}
	b.WriteString(`        <span class="meta">Page `)
	b.WriteString(itoa(p.Page))
	b.WriteString(` of `)
	b.WriteString(itoa(p.TotalPages))
	b.WriteString(`</span>
`)
	if p.HasNext {
		b.WriteString(`        <a href="`)
		b.WriteString(esc(pageURL(p.BasePath, p.NextPage, p.PerPage)))
		b.WriteString(`">Next</a>
`)
	}
	b.WriteString(`      </nav>
`)
}
