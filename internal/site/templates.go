package site

// pageTemplates holds the html/template definitions for every page kind.
// Each page template renders "head" and "foot" around its own body.
const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="{{.Lang}}" data-theme="{{.Theme}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{if .Title}}{{.Title}} · {{end}}{{.Site.Title}}</title>
  <meta name="description" content="{{.Site.Description}}">
  {{if .Site.Author}}<meta name="author" content="{{.Site.Author}}">{{end}}
  <link rel="manifest" href="{{.Root}}manifest.webmanifest">
  <link rel="icon" href="{{.Root}}site/icons/icon-192.png">
  <link rel="stylesheet" href="{{.Root}}site/styles.css">
</head>
<body data-lang="{{.Lang}}"{{if .Gallery}} data-gallery="{{.Gallery.Slug}}"{{end}}>
  <header class="top-bar">
    <a class="brand" href="{{.Home}}">{{.Site.Title}}</a>
    <nav class="main-nav">
      {{range .Doc.Content.Navigation}}<a href="{{.Href}}">{{.Name}}</a>{{end}}
    </nav>
    <div class="toggles">
      <a class="lang-toggle" href="{{.OtherHome}}" data-lang="{{.OtherLang}}">{{.OtherLang}}</a>
      <button class="theme-toggle" id="theme-toggle" aria-label="Toggle theme">◐</button>
    </div>
  </header>
  <main>
{{end}}

{{define "foot"}}
  </main>
  <footer class="site-footer">
    <p>{{.Doc.Footer.Copyright}}</p>
    <nav>{{range .Doc.Footer.Links}}<a href="{{.Href}}">{{.Name}}</a>{{end}}</nav>
  </footer>
  <div class="viewer" id="viewer" hidden>
    <button class="viewer-close" data-cmd="close" aria-label="Close">×</button>
    <button class="viewer-prev" data-cmd="prev" aria-label="Previous">‹</button>
    <div class="viewer-stage" id="viewer-stage"></div>
    <button class="viewer-next" data-cmd="next" aria-label="Next">›</button>
    <div class="viewer-counter" id="viewer-counter"></div>
  </div>
  <script src="{{.Root}}site/scripts.js"></script>
</body>
</html>
{{end}}

{{define "card"}}
<a class="project-folder" href="{{.Href}}">
  <div class="folder-header">
    <span class="image-count">{{.Count}}</span>
    <h3 class="folder-title">{{.Title}}</h3>
    <p class="folder-description">{{.Description}}</p>
  </div>
  <div class="folder-preview">
    {{range .Preview}}<div class="preview-thumb" data-media-type="{{.Kind}}">
      {{if .IsVideo}}<video src="{{.Src}}" muted loop></video>{{else if .IsEmbed}}<span class="embed-icon">▶</span>{{else}}<img src="{{.Thumb}}" alt="{{.Alt}}" loading="lazy">{{end}}
    </div>{{end}}
    {{if .More}}<div class="preview-more">+{{.More}}</div>{{end}}
  </div>
</a>
{{end}}

{{define "index"}}{{template "head" .}}
  <section class="hero" id="home">
    <h1>{{.Doc.Content.Hero.Title}}</h1>
    {{with .Doc.Content.Hero.Subtitle}}<p class="hero-subtitle">{{.}}</p>{{end}}
    <div class="hero-description">{{.Hero}}</div>
    <div class="hero-buttons">
      {{with .Doc.Content.Hero.Buttons.ViewProjects}}<a class="btn" href="#projects">{{.}}</a>{{end}}
      {{with .Doc.Content.Hero.Buttons.GetInTouch}}<a class="btn btn-secondary" href="#contact">{{.}}</a>{{end}}
    </div>
  </section>
  <section id="projects">
    {{range .Nav}}<div class="project-category" id="{{.Key}}">
      <h2 class="category-title">{{.Title}}</h2>
      <p class="category-description">{{.Description}}</p>
      <div class="folders-grid">{{range .Galleries}}{{template "card" .}}{{end}}</div>
    </div>{{end}}
  </section>
  <section id="contact" class="contact">
    {{with .Doc.Contact}}
    {{if .Email}}<a class="contact-link" href="{{.MailTo}}">{{.Mail}}</a>{{end}}
    {{if .GitHub}}<a class="contact-link" href="{{.GitHub}}" rel="noopener noreferrer">GitHub</a>{{end}}
    {{if .LinkedIn}}<a class="contact-link" href="{{.LinkedIn}}" rel="noopener noreferrer">LinkedIn</a>{{end}}
    {{if .Discord}}<span class="contact-link">Discord: {{.Discord}}</span>{{end}}
    {{end}}
  </section>
{{template "foot" .}}{{end}}

{{define "gallery"}}{{template "head" .}}
  <section class="gallery-page">
    <a class="back" href="{{.Home}}#projects">←</a>
    <h1 class="gallery-title">{{.Gallery.Title}}</h1>
    <p class="gallery-description">{{.Gallery.Description}}</p>
    <div class="gallery-grid">
      {{range .Gallery.Media}}<figure class="gallery-image" data-index="{{.Index}}" data-src="{{.Src}}" data-media-type="{{.Kind}}">
        {{if .IsVideo}}<video src="{{.Src}}" muted loop></video>{{else if .IsEmbed}}<span class="embed-icon">▶</span>{{else}}<img src="{{.Thumb}}" alt="{{.Alt}}" loading="lazy">{{end}}
        {{if or .Title .Description}}<figcaption>{{with .Title}}<h4>{{.}}</h4>{{end}}{{with .Description}}<p>{{.}}</p>{{end}}</figcaption>{{end}}
      </figure>{{end}}
    </div>
  </section>
{{template "foot" .}}{{end}}

{{define "legal"}}{{template "head" .}}
  <article class="legal">{{.Body}}</article>
{{template "foot" .}}{{end}}

{{define "notfound"}}{{template "head" .}}
  <section class="not-found"><h1>404</h1><p><a href="{{.Home}}">{{.Site.Title}}</a></p></section>
{{template "foot" .}}{{end}}
`

// cssContent is written to site/styles.css when the content directory
// has none.
const cssContent = `:root {
  --bg: #fafafa; --fg: #1d1d1f; --muted: #6e6e73; --card: #fff; --accent: #0071e3;
}
[data-theme="dark"] {
  --bg: #111113; --fg: #f5f5f7; --muted: #a1a1a6; --card: #1c1c1e; --accent: #2997ff;
}
* { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, sans-serif; background: var(--bg); color: var(--fg); }
a { color: var(--accent); text-decoration: none; }
main { max-width: 1100px; margin: 0 auto; padding: 1rem; }
.top-bar { display: flex; align-items: center; gap: 1rem; padding: 1rem; }
.top-bar .brand { font-weight: 600; color: var(--fg); }
.main-nav { display: flex; gap: 1rem; flex: 1; }
.toggles { display: flex; gap: .5rem; }
.toggles button, .lang-toggle { background: none; border: 1px solid var(--muted); color: var(--fg); border-radius: 6px; padding: .2rem .6rem; cursor: pointer; text-transform: uppercase; }
.hero { padding: 4rem 0 2rem; }
.hero-subtitle, .category-description, .folder-description { color: var(--muted); }
.btn { display: inline-block; padding: .6rem 1.2rem; border-radius: 8px; background: var(--accent); color: #fff; }
.btn-secondary { background: none; color: var(--accent); border: 1px solid var(--accent); }
.folders-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(280px, 1fr)); gap: 1rem; }
.project-folder { display: block; background: var(--card); border-radius: 12px; padding: 1rem; color: var(--fg); }
.image-count { float: right; color: var(--muted); }
.folder-preview { display: flex; gap: .4rem; align-items: center; }
.preview-thumb img, .preview-thumb video { width: 80px; height: 80px; object-fit: cover; border-radius: 6px; }
.preview-more { color: var(--muted); }
.gallery-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(220px, 1fr)); gap: 1rem; }
.gallery-image { margin: 0; cursor: zoom-in; }
.gallery-image img, .gallery-image video { width: 100%; aspect-ratio: 1; object-fit: cover; border-radius: 8px; }
.embed-icon { display: flex; align-items: center; justify-content: center; aspect-ratio: 1; background: var(--card); font-size: 2rem; }
.site-footer { text-align: center; color: var(--muted); padding: 2rem; }
.site-footer nav { display: flex; gap: 1rem; justify-content: center; }
.viewer { position: fixed; inset: 0; background: rgba(0,0,0,.92); z-index: 100; display: flex; align-items: center; justify-content: center; }
.viewer[hidden] { display: none; }
.viewer-stage { width: 100%; height: 100%; overflow: hidden; display: flex; align-items: center; justify-content: center; touch-action: none; }
.viewer-stage img, .viewer-stage video, .viewer-stage iframe { max-width: 100%; max-height: 100%; transition: opacity .2s; transform-origin: center; }
.viewer-stage iframe { width: 80vw; height: 45vw; border: 0; }
.viewer button { position: absolute; background: none; border: 0; color: #fff; font-size: 2.5rem; cursor: pointer; z-index: 1; }
.viewer-close { top: 1rem; right: 1rem; }
.viewer-prev { left: 1rem; }
.viewer-next { right: 1rem; }
.viewer-counter { position: absolute; bottom: 1rem; color: #fff; }
`

// jsContent is written to site/scripts.js when the content directory has
// none. It forwards input to the viewer session and draws its views.
const jsContent = `(function() {
  var body = document.body;
  var lang = body.dataset.lang || "en";
  var gallery = body.dataset.gallery;
  var viewer = document.getElementById("viewer");
  var stage = document.getElementById("viewer-stage");
  var counter = document.getElementById("viewer-counter");
  var el = null, elID = 0, ws = null, queue = [], pushed = false;

  function post(url) {
    return fetch(url, {method: "POST", credentials: "same-origin"}).then(function(r) { return r.json(); });
  }
  document.getElementById("theme-toggle").addEventListener("click", function() {
    post("/api/prefs/theme/toggle").then(function(p) { document.documentElement.dataset.theme = p.theme; });
  });
  var langToggle = document.querySelector(".lang-toggle");
  if (langToggle) langToggle.addEventListener("click", function(e) {
    e.preventDefault();
    var href = langToggle.getAttribute("href");
    post("/api/prefs/language/toggle").then(function() { location.href = href; });
  });

  function send(cmd) {
    if (ws && ws.readyState === 1) { ws.send(JSON.stringify(cmd)); return; }
    queue.push(cmd);
    if (ws) return;
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    ws = new WebSocket(proto + location.host + "/ws/viewer");
    ws.onopen = function() { while (queue.length) ws.send(JSON.stringify(queue.shift())); };
    ws.onmessage = function(e) { draw(JSON.parse(e.data)); };
    ws.onclose = function() { ws = null; };
  }
  function size() { return {w: stage.clientWidth || innerWidth, h: stage.clientHeight || innerHeight}; }

  function draw(v) {
    if (v.type === "error") { console.warn(v.error); return; }
    if (v.open && v.path && !pushed) {
      history.pushState({viewer: v.path}, "", v.path + location.search);
      pushed = true;
    } else if (!v.open && pushed) {
      pushed = false;
      history.back();
    }
    viewer.hidden = !v.open;
    body.style.overflow = v.open ? "hidden" : "";
    if (!v.open) { stage.innerHTML = ""; el = null; elID = 0; return; }
    if (v.element_id !== elID) {
      stage.innerHTML = "";
      var tag = v.kind === "video" ? "video" : v.kind === "embed" ? "iframe" : "img";
      el = document.createElement(tag);
      if (tag === "video") { el.controls = true; el.autoplay = true; }
      if (tag === "iframe") el.allowFullscreen = true;
      var src = v.src;
      el.addEventListener(tag === "video" ? "loadedmetadata" : "load", function() {
        send({type: "loaded", src: src, size: {w: el.naturalWidth || el.videoWidth || el.clientWidth, h: el.naturalHeight || el.videoHeight || el.clientHeight}});
      });
      el.addEventListener("error", function() { send({type: "load_failed", src: src, error: "load failed"}); });
      el.src = src;
      stage.appendChild(el);
      elID = v.element_id;
    }
    el.style.transform = v.css || "";
    el.style.opacity = v.opacity;
    viewer.querySelector(".viewer-prev").hidden = !v.navigation;
    viewer.querySelector(".viewer-next").hidden = !v.navigation;
    counter.textContent = v.count > 1 ? (v.index + 1) + " / " + v.count : "";
  }

  document.querySelectorAll(".gallery-image").forEach(function(fig) {
    fig.addEventListener("click", function() {
      send({type: "resize", size: size()});
      send({type: "open", gallery: gallery, lang: lang, index: +fig.dataset.index});
    });
  });
  viewer.querySelectorAll("[data-cmd]").forEach(function(b) {
    b.addEventListener("click", function(e) { e.stopPropagation(); send({type: b.dataset.cmd}); });
  });
  addEventListener("popstate", function() { if (pushed) { pushed = false; send({type: "close"}); } });
  document.addEventListener("keydown", function(e) { if (!viewer.hidden) send({type: "key", key: e.key}); });
  addEventListener("resize", function() { if (!viewer.hidden) send({type: "resize", size: size()}); });
  stage.addEventListener("wheel", function(e) { e.preventDefault(); send({type: "wheel", delta_y: e.deltaY}); }, {passive: false});
  stage.addEventListener("dblclick", function() { send({type: "double_click"}); });

  var last = null;
  stage.addEventListener("mousedown", function(e) { last = {x: e.clientX, y: e.clientY}; e.preventDefault(); });
  addEventListener("mousemove", function(e) {
    if (!last) return;
    send({type: "drag", dx: e.clientX - last.x, dy: e.clientY - last.y});
    last = {x: e.clientX, y: e.clientY};
  });
  addEventListener("mouseup", function() { last = null; });

  function points(list) {
    return Array.prototype.map.call(list, function(t) { return {x: t.clientX, y: t.clientY}; });
  }
  stage.addEventListener("touchstart", function(e) { send({type: "touch_start", points: points(e.touches)}); }, {passive: true});
  stage.addEventListener("touchmove", function(e) { e.preventDefault(); send({type: "touch_move", points: points(e.touches)}); }, {passive: false});
  stage.addEventListener("touchend", function(e) { send({type: "touch_end", points: points(e.touches)}); });
})();
`
