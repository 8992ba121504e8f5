package report

import (
	"html/template"
	"strconv"
	"strings"
)

const hljsCDN = "https://cdnjs.cloudflare.com/ajax/libs/highlight.js/11.9.0"

var hljsLanguages = []string{"fortran", "c", "cpp", "python", "bash"}

const pageCSS = `<style>
body { font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; margin: 24px; {{UI_FONT_RULE}} }
h1, h2, h3 { margin: 0.6em 0 0.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
tr:nth-child(even) { background: #f9f9f9; }
.delta-pos { color: #006400; font-weight: 600; }
.delta-neg { color: #8B0000; font-weight: 600; }
.badge { display: inline-block; padding: 2px 8px; border-radius: 12px; background: #eee; margin-right: 8px; }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 8px; }
a.filelink { text-decoration: none; }
.pill { display: inline-block; padding: 2px 8px; border-radius: 999px; background: #eee; margin-left: 8px; font-weight: 600; }
.breadcrumbs a { text-decoration: none; }
.header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 10px; }
pre { margin: 0; white-space: pre-wrap; }
td.num, th.num { text-align: right; }
td.empty { text-align: center; }
th.sortable { cursor: pointer; user-select: none; }
th.sortable .caret { display: inline-block; margin-left: 6px; opacity: 0.7; }
th[aria-sort="asc"] .caret::after { content: "\25B2"; }
th[aria-sort="desc"] .caret::after { content: "\25BC"; }
th[aria-sort="none"] .caret::after { content: ""; }
tr.nonexec td, tr.nodata td { color: #555; }
tr.row-covered, tr.row-became_covered { background: #e6ffed; }
tr.row-uncovered, tr.row-became_uncovered { background: #ffebee; }
pre, code, pre code {
  font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, "Liberation Mono", monospace;
  font-size: {{CODE_FONT_SIZE}}px;
  line-height: {{CODE_LINE_HEIGHT}};
}
code.hljs { padding: 0; background: transparent; font-weight: 400; }
.hljs { background: transparent; }
.hljs * { font-weight: 400; }
.minimap {
  position: fixed; right: 10px; top: 84px; width: 16px; height: calc(100vh - 120px);
  border-radius: 6px; background: #f3f4f6; box-shadow: inset 0 0 0 1px rgba(0,0,0,0.08);
  z-index: 999; cursor: grab;
}
.minimap.dragging { cursor: grabbing; }
.minimap .seg { position: absolute; left: 0; width: 100%; opacity: 0.9; }
.minimap .seg.covered { background: #a7f3d0; }
.minimap .seg.uncovered { background: #fecaca; }
.minimap .seg.nonexec, .minimap .seg.nodata, .minimap .seg.same { background: #e5e7eb; }
.minimap .seg.became_covered { background: #34d399; }
.minimap .seg.became_uncovered { background: #f87171; }
.minimap .view {
  position: absolute; left: 0; width: 100%; border: 1px solid rgba(0,0,0,0.35);
  background: rgba(0,0,0,0.08); border-radius: 3px; pointer-events: none;
}
</style>`

// sorterJS makes every table.sortable sortable by clicking a header that has
// a data-sort type (alpha, num or percent) and applies the initial aria-sort.
const sorterJS = `<script>
(function(){
  function cellValue(td, type){
    var t = td ? td.textContent.trim() : '';
    if(type === 'percent'){ return parseFloat(t.replace('%','')) || 0; }
    if(type === 'num'){ return parseFloat(t) || 0; }
    return t.toLowerCase();
  }
  function compare(a, b, type, dir){
    if(type === 'alpha'){
      if(a < b) return dir === 'asc' ? -1 : 1;
      if(a > b) return dir === 'asc' ? 1 : -1;
      return 0;
    }
    return dir === 'asc' ? (a - b) : (b - a);
  }
  function sortBy(table, i, type, dir){
    var tbody = table.tBodies[0];
    var rows = Array.from(tbody.rows);
    rows.sort(function(r1, r2){ return compare(cellValue(r1.cells[i], type), cellValue(r2.cells[i], type), type, dir); });
    rows.forEach(function(r){ tbody.appendChild(r); });
  }
  function makeSortable(table){
    if(!table.tHead || !table.tBodies[0]) return;
    var headers = table.tHead.rows[0].cells;
    Array.from(headers).forEach(function(th, i){
      var type = th.getAttribute('data-sort');
      if(!type) return;
      th.classList.add('sortable');
      if(!th.hasAttribute('aria-sort')) th.setAttribute('aria-sort', 'none');
      th.addEventListener('click', function(){
        var dir = th.getAttribute('aria-sort') === 'asc' ? 'desc' : 'asc';
        Array.from(headers).forEach(function(h){ if(h !== th) h.setAttribute('aria-sort', 'none'); });
        th.setAttribute('aria-sort', dir);
        sortBy(table, i, type, dir);
      });
    });
    for(var i = 0; i < headers.length; i++){
      var type = headers[i].getAttribute('data-sort');
      var dir = headers[i].getAttribute('aria-sort');
      if(type && dir && dir !== 'none'){ sortBy(table, i, type, dir); break; }
    }
  }
  document.addEventListener('DOMContentLoaded', function(){
    document.querySelectorAll('table.sortable').forEach(makeSortable);
  });
})();
</script>`

// minimapJS draws coloured segments for runs of rows sharing a data-state
// and a draggable viewport marker into #minimap.
const minimapJS = `<script>
(function(){
  function init(){
    var mini = document.getElementById('minimap');
    var table = document.querySelector('table.sortable');
    if(!mini || !table || !table.tBodies[0]) return;
    var rows = Array.from(table.tBodies[0].rows);
    if(!rows.length) return;

    var segs = [], cur = null, start = 0;
    rows.forEach(function(r, i){
      var st = r.getAttribute('data-state') || 'same';
      if(cur === null){ cur = st; start = i; return; }
      if(st !== cur){ segs.push([start, i, cur]); cur = st; start = i; }
    });
    segs.push([start, rows.length, cur]);

    mini.innerHTML = '';
    segs.forEach(function(s){
      var seg = document.createElement('div');
      seg.className = 'seg ' + s[2];
      seg.style.top = (s[0] / rows.length * 100) + '%';
      seg.style.height = ((s[1] - s[0]) / rows.length * 100) + '%';
      seg.title = s[2];
      seg.addEventListener('click', function(){ rows[s[0]].scrollIntoView({behavior: 'smooth', block: 'start'}); });
      mini.appendChild(seg);
    });
    var view = document.createElement('div');
    view.className = 'view';
    mini.appendChild(view);

    var viewFrac = 0;
    function update(){
      var rect = table.getBoundingClientRect();
      var top = rect.top + window.scrollY;
      var height = table.scrollHeight || rect.height || 1;
      var vh = window.innerHeight || document.documentElement.clientHeight || 0;
      var a = Math.max(top, Math.min(top + height, window.scrollY));
      var b = Math.max(top, Math.min(top + height, window.scrollY + vh));
      viewFrac = Math.max(0, Math.min(1, (b - a) / height));
      var topFrac = Math.max(0, Math.min(1 - viewFrac, (a - top) / height));
      view.style.top = (topFrac * 100) + '%';
      view.style.height = (viewFrac * 100) + '%';
    }
    function scrollTo(clientY){
      var m = mini.getBoundingClientRect();
      var pos = Math.max(0, Math.min(1, (clientY - m.top) / Math.max(1, m.height)));
      var frac = Math.max(0, Math.min(1 - viewFrac, pos - viewFrac / 2));
      var rect = table.getBoundingClientRect();
      var height = table.scrollHeight || rect.height || 1;
      var vh = window.innerHeight || 0;
      window.scrollTo({top: window.scrollY + rect.top + frac * Math.max(0, height - vh), behavior: 'auto'});
      requestAnimationFrame(update);
    }

    var dragging = false;
    update();
    window.addEventListener('scroll', function(){ requestAnimationFrame(update); }, {passive: true});
    window.addEventListener('resize', update);
    mini.addEventListener('mousedown', function(e){ dragging = true; mini.classList.add('dragging'); scrollTo(e.clientY); e.preventDefault(); });
    document.addEventListener('mousemove', function(e){ if(dragging) requestAnimationFrame(function(){ scrollTo(e.clientY); }); });
    document.addEventListener('mouseup', function(){ dragging = false; mini.classList.remove('dragging'); });
    mini.addEventListener('touchstart', function(e){
      if(!e.touches.length) return;
      dragging = true; scrollTo(e.touches[0].clientY); e.preventDefault();
    }, {passive: false});
    document.addEventListener('touchmove', function(e){
      if(dragging && e.touches.length){ scrollTo(e.touches[0].clientY); e.preventDefault(); }
    }, {passive: false});
    document.addEventListener('touchend', function(){ dragging = false; });
  }
  document.addEventListener('DOMContentLoaded', init);
})();
</script>`

// pageAssets returns the stylesheet and scripts placed in every page head.
// Highlighter assets are only added for detail pages.
func pageAssets(opts Options, detail bool) template.HTML {
	uiRule := ""
	if opts.UIFontSize > 0 {
		uiRule = "font-size: " + strconv.Itoa(opts.UIFontSize) + "px;"
	}
	css := strings.NewReplacer(
		"{{UI_FONT_RULE}}", uiRule,
		"{{CODE_FONT_SIZE}}", strconv.FormatFloat(opts.CodeFontSize, 'g', -1, 64),
		"{{CODE_LINE_HEIGHT}}", strconv.FormatFloat(opts.CodeLineHeight, 'g', -1, 64),
	).Replace(pageCSS)

	var b strings.Builder
	b.WriteString(css)
	b.WriteString(sorterJS)
	if detail {
		b.WriteString(minimapJS)
		if opts.Syntax == SyntaxHLJS {
			b.WriteString(hljsAssets(opts.Theme))
		}
	}
	return template.HTML(b.String())
}

func hljsAssets(theme string) string {
	themeFile := "github.min.css"
	if theme == "github-dark" {
		themeFile = "github-dark.min.css"
	}

	var b strings.Builder
	b.WriteString("<link rel='stylesheet' href='" + hljsCDN + "/styles/" + themeFile + "'>")
	b.WriteString("<script src='" + hljsCDN + "/highlight.min.js'></script>")
	for _, lang := range hljsLanguages {
		b.WriteString("<script src='" + hljsCDN + "/languages/" + lang + ".min.js'></script>")
	}
	b.WriteString("<script>document.addEventListener('DOMContentLoaded', function(){ if(window.hljs){ hljs.highlightAll(); } });</script>")
	return b.String()
}
