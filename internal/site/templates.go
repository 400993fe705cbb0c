package site

// pageTemplate is the viewer page. Cards, sub panels and grandchildren are
// laid out inline so their toggle links can see the enclosing ids.
const pageTemplate = `<!DOCTYPE html>
<html lang="zh-Hant">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <link rel="manifest" href="{{.Base}}manifest.json">
  <link rel="stylesheet" href="{{.Base}}style.css">
</head>
<body>
  <nav class="sidebar">
    <div class="sidebar-header">
      <h2 class="project-title"><a href="{{.Home}}">{{.Title}}</a></h2>
      {{if .Subtitle}}<p class="subtitle">{{.Subtitle}}</p>{{end}}
      {{if .Live}}<form class="search" method="get" action="{{.Base}}">
        <input type="search" name="q" id="search-input" value="{{.Query}}" placeholder="搜尋" autocomplete="off">
      </form>{{end}}
      <p class="doc-links"><a href="{{.Base}}{{.PrefaceHref}}">序言</a> · <a href="{{.Base}}{{.AuthorsHref}}">編審名單</a></p>
    </div>
    <div class="sidebar-tree">
      {{.Outline}}
    </div>
  </nav>
  <main class="content">
    <div class="status-bar">
      <span class="result-count">{{.View.Matched}} / {{.View.Total}}</span>
      {{if .Query}}<span class="match-nav">
        {{if .Prev}}<a class="match-prev" href="{{.Prev}}" rel="prev">‹</a>{{end}}
        <span class="match-label">{{.Label}}</span>
        {{if .Next}}<a class="match-next" href="{{.Next}}" rel="next">›</a>{{end}}
      </span>{{end}}
    </div>
    {{range .View.Cards}}{{$entry := .ID}}
    <section class="card tone-{{.Tone}}{{if .Expanded}} open{{end}}" id="entry-{{.ID}}">
      <a class="card-header" href="{{entryHref .ID}}">
        <span class="icon icon-{{.Icon}}" aria-hidden="true"></span>
        <span class="tag">{{text .Tag}}</span>
        <span class="category">{{text .Category}}</span>
        <span class="title">{{text .Title}}</span>
      </a>
      {{if .Expanded}}<div class="card-body">
        {{if .Parent}}{{range .Subs}}{{$sub := .ID}}
        <div class="sub{{if .Expanded}} open{{end}}" id="sub-{{$entry}}-{{.ID}}">
          <a class="sub-header" href="{{subHref $entry .ID}}">{{text .Title}}</a>
          {{if .Expanded}}<div class="sub-body{{if .Scrollable}} scroll{{end}}"{{if .Alignment}} data-align="{{.Alignment}}"{{end}}>
            {{if .HasBody}}
            {{if .Image}}<figure class="figure"><img src="{{asset .Image}}" alt="" loading="lazy"></figure>{{end}}
            <div class="{{if .TextLayout}}paragraphs{{else}}steps{{end}}">{{template "blocks" .Body}}</div>
            {{if .BottomImage}}<figure class="figure"><img src="{{asset .BottomImage}}" alt="" loading="lazy"></figure>{{end}}
            {{if .BottomImage2}}<figure class="figure"><img src="{{asset .BottomImage2}}" alt="" loading="lazy"></figure>{{end}}
            {{if .Note}}<p class="sub-note">{{subNotePrefix}}{{text .Note}}</p>{{end}}
            {{end}}
            {{range .Grands}}
            <div class="grand{{if .Expanded}} open{{end}}" id="grand-{{$entry}}-{{$sub}}-{{.ID}}">
              <a class="grand-header" href="{{grandHref $entry $sub .ID}}">{{if .Code}}<span class="code">{{text .Code}}</span> {{end}}{{text .Title}}</a>
              {{if .Expanded}}<div class="grand-body">
                {{if .Image}}<figure class="figure"><img src="{{asset .Image}}" alt="" loading="lazy"></figure>{{end}}
                {{if .Image2}}<figure class="figure"><img src="{{asset .Image2}}" alt="" loading="lazy"></figure>{{end}}
                <div class="steps">{{template "blocks" .Body}}</div>
                {{if .Note}}<p class="grand-note"><strong>{{grandNoteLabel}}</strong>{{text .Note}}</p>{{end}}
                {{if .BottomImage}}<figure class="figure"><img src="{{asset .BottomImage}}" alt="" loading="lazy"></figure>{{end}}
                {{if .BottomImage2}}<figure class="figure"><img src="{{asset .BottomImage2}}" alt="" loading="lazy"></figure>{{end}}
              </div>{{end}}
            </div>
            {{end}}
          </div>{{end}}
        </div>
        {{end}}{{else if .Pending}}<p class="pending">{{pendingLabel}}</p>{{else}}
        <div class="{{.Layout}}">{{template "blocks" .Body}}</div>
        {{if .Note}}<div class="note"><strong>{{noteLabel}}</strong>{{text .Note}}</div>{{end}}
        {{end}}
      </div>{{end}}
    </section>
    {{end}}
  </main>
  <script src="{{.Base}}script.js"></script>
</body>
</html>
{{define "blocks"}}{{range .}}{{if isImage .}}<figure class="figure{{if .Small}} qr{{end}}"><img src="{{asset .Asset}}" alt="" loading="lazy"></figure>
{{else if isHeader .}}<h4 class="step-header">{{inlines .Inlines}}</h4>
{{else if isSpacer .}}<div class="spacer"></div>
{{else}}<p class="step{{if .Continuation}} cont{{end}}" style="{{indent .}}">{{inlines .Inlines}}</p>
{{end}}{{end}}{{end}}`

// docTemplate wraps the rendered preface and authors markdown.
const docTemplate = `<!DOCTYPE html>
<html lang="zh-Hant">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Heading}} · {{.Title}}</title>
  <link rel="manifest" href="{{.Base}}manifest.json">
  <link rel="stylesheet" href="{{.Base}}style.css">
</head>
<body>
  <main class="content doc">
    <p><a href="{{.Home}}">‹ {{.Title}}</a></p>
    <article class="page-content">
      {{.Content}}
    </article>
  </main>
</body>
</html>`

const cssContent = `:root {
  --bg: #ffffff;
  --fg: #1f2328;
  --muted: #656d76;
  --border: #d0d7de;
  --mark: #fff3a3;
  --mark-current: #ff9632;
  --tone-law: #6e7781;
  --tone-general: #0969da;
  --tone-medical: #1a7f37;
  --tone-trauma: #cf222e;
  --tone-special: #8250df;
}
* { box-sizing: border-box; }
body { margin: 0; display: flex; font-family: system-ui, "Noto Sans TC", sans-serif; color: var(--fg); background: var(--bg); }
a { color: inherit; text-decoration: none; }
.sidebar { width: 280px; flex-shrink: 0; height: 100vh; position: sticky; top: 0; overflow-y: auto; border-right: 1px solid var(--border); padding: 1rem; }
.subtitle, .doc-links { color: var(--muted); font-size: 0.9rem; }
.sidebar-tree ul { list-style: none; padding-left: 0.8rem; margin: 0.2rem 0; }
.sidebar-tree .active > a { font-weight: 600; }
.search input { width: 100%; padding: 0.4rem; border: 1px solid var(--border); border-radius: 6px; }
.content { flex: 1; max-width: 960px; padding: 1rem 2rem; }
.status-bar { display: flex; justify-content: space-between; position: sticky; top: 0; background: var(--bg); padding: 0.5rem 0; color: var(--muted); }
.match-nav a { padding: 0 0.5rem; font-size: 1.2rem; }
.card { border: 1px solid var(--border); border-left: 4px solid var(--tone-general); border-radius: 6px; margin: 0.6rem 0; }
.card.tone-law { border-left-color: var(--tone-law); }
.card.tone-medical { border-left-color: var(--tone-medical); }
.card.tone-trauma { border-left-color: var(--tone-trauma); }
.card.tone-special { border-left-color: var(--tone-special); }
.card-header { display: flex; gap: 0.6rem; padding: 0.7rem 1rem; align-items: baseline; }
.card-header .tag { font-weight: 700; }
.card-header .category { color: var(--muted); font-size: 0.85rem; }
.card-body { padding: 0 1rem 1rem; }
.sub, .grand { border-top: 1px solid var(--border); }
.sub-header, .grand-header { display: block; padding: 0.5rem 0; font-weight: 600; }
.grand { margin-left: 1rem; }
.sub-body.scroll { overflow-x: auto; }
.step { margin: 0.3rem 0; }
.step-header { margin: 0.8rem 0 0.3rem; }
.spacer { height: 0.8rem; }
.figure { margin: 0.6rem 0; }
.figure img { max-width: 100%; }
.figure.qr img { max-width: 160px; }
.badge { display: inline-block; margin-left: 0.3rem; padding: 0 0.35rem; border-radius: 4px; font-size: 0.75rem; color: #fff; }
.badge-paramedic { background: var(--tone-trauma); }
.badge-order { background: var(--tone-special); }
.note, .sub-note, .grand-note { margin-top: 0.8rem; padding: 0.5rem 0.8rem; background: #f6f8fa; border-radius: 6px; }
.pending { color: var(--muted); font-style: italic; }
mark.search-match { background: var(--mark); }
mark.search-match.current { background: var(--mark-current); }
@media (max-width: 768px) { body { display: block; } .sidebar { width: 100%; height: auto; position: static; } }
`

// jsContent binds n/N to the match links and keeps the focused match in view.
const jsContent = `(function () {
  var current = document.querySelector('mark.search-match.current');
  if (current) current.scrollIntoView({block: 'center'});
  document.addEventListener('keydown', function (e) {
    if (e.target.tagName === 'INPUT') return;
    var link = null;
    if (e.key === 'n') link = document.querySelector('a.match-next');
    if (e.key === 'N') link = document.querySelector('a.match-prev');
    if (e.key === '/') { var q = document.getElementById('search-input'); if (q) { e.preventDefault(); q.focus(); } }
    if (link) { e.preventDefault(); window.location.href = link.href; }
  });
})();
`
