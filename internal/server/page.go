package server

import (
	"html/template"
	"io"

	"github.com/mwiater/dinomuseum/internal/gallery"
)

type pageView struct {
	Exhibits     []gallery.Exhibit
	ErrorMessage string
}

func renderPage(w io.Writer, snap gallery.Snapshot) error {
	view := pageView{Exhibits: snap.Exhibits}
	if snap.Err != nil {
		view.ErrorMessage = gallery.ErrorMessage
	}
	return pageTemplate.ExecuteTemplate(w, "page", view)
}

var pageTemplate = template.Must(template.New("page").Parse(pageTemplateHTML))

const pageTemplateHTML = `{{ define "exhibit" }}<div class="dino-exhibit" data-dino-name="{{ .Name }}">
  <div class="dino-cuadro">
    <img class="dino-img" src="{{ .ImageURL }}" alt="{{ .Name }}" onerror="this.src='/static/placeholder.png'">
    {{ if .FrameURL }}<img class="dino-marco" src="{{ .FrameURL }}" alt="">{{ end }}
  </div>
  <div class="placa-slicer-container">
    <div class="placa-wrapper">
      <div class="dino-placa">{{ .MainPlaque }}</div>
      <div class="dino-placa">{{ .PhysicalPlaque }}</div>
    </div>
    <button class="slicer-arrow prev" type="button">‹</button>
    <button class="slicer-arrow next" type="button">›</button>
  </div>
</div>{{ end }}
{{ define "page" }}<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Museo de Dinosaurios</title>
  <link rel="stylesheet" href="/static/style.css">
</head>
<body>
  <div class="fondo-paralax"></div>
  <header>
    <button id="menu-toggle-btn" type="button">☰</button>
    <nav id="main-menu" class="hidden">
      <button id="show-model-info-btn" type="button">Información del Modelo</button>
    </nav>
    <h1>Museo de Dinosaurios</h1>
    <button id="generar-dino-btn" type="button">Generar Nuevo Espécimen</button>
    <div id="loading-indicator" class="hidden">Generando...</div>
  </header>
  <main class="museo-container">{{ if .ErrorMessage }}
    <p class="error-msg">{{ .ErrorMessage }}</p>{{ else }}{{ range .Exhibits }}
    {{ template "exhibit" . }}{{ end }}{{ end }}
  </main>
  <div id="modal-overlay" class="hidden">
    <div class="modal">
      <button id="close-modal-btn" type="button">×</button>
      <div id="modal-content-area"></div>
    </div>
  </div>
  <div id="chat-overlay" class="hidden">
    <div class="chat-window">
      <div class="chat-header"><h2 id="chat-title"></h2><button id="close-chat-btn" type="button">×</button></div>
      <div id="chat-history"></div>
      <div class="chat-input">
        <textarea id="chat-user-input" rows="2"></textarea>
        <button id="chat-send-btn" type="button">Enviar</button>
      </div>
    </div>
  </div>
  <script>
document.addEventListener('DOMContentLoaded', function () {
  var byId = function (id) { return document.getElementById(id); };
  var session = null;

  function postJSON(url, body) {
    return fetch(url, {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(body || {})})
      .then(function (resp) { return resp.json().then(function (data) { return {ok: resp.ok, data: data}; }); });
  }

  function addMessage(html, sender) {
    var div = document.createElement('div');
    div.className = 'chat-message ' + sender;
    var img = document.createElement('img');
    img.className = 'chat-avatar';
    img.src = sender === 'bot' ? session.avatar_url : session.user_avatar_url;
    var p = document.createElement('p');
    if (sender === 'bot') { p.innerHTML = html; } else { p.textContent = html; }
    div.appendChild(img);
    div.appendChild(p);
    byId('chat-history').appendChild(div);
    byId('chat-history').scrollTop = byId('chat-history').scrollHeight;
  }

  document.querySelectorAll('.dino-exhibit').forEach(function (ex) {
    ex.querySelector('.slicer-arrow.next').addEventListener('click', function (e) { e.stopPropagation(); ex.querySelector('.placa-wrapper').classList.add('slide-active'); });
    ex.querySelector('.slicer-arrow.prev').addEventListener('click', function (e) { e.stopPropagation(); ex.querySelector('.placa-wrapper').classList.remove('slide-active'); });
    ex.addEventListener('click', function () {
      postJSON('/chat/open', {name: ex.dataset.dinoName}).then(function (res) {
        if (!res.ok) { return; }
        session = res.data;
        byId('chat-title').textContent = session.title;
        byId('chat-history').innerHTML = '';
        addMessage(session.greeting, 'bot');
        byId('chat-user-input').value = '';
        byId('chat-overlay').classList.remove('hidden');
      });
    });
  });

  function send() {
    var question = byId('chat-user-input').value.trim();
    if (!question || !session) { return; }
    addMessage(question, 'user');
    byId('chat-user-input').value = '';
    byId('chat-send-btn').disabled = true;
    postJSON('/chat', {session_id: session.session_id, question: question})
      .then(function (res) { addMessage(res.data.answer || '<b>¡GRRR!</b> Mis pensamientos se nublan...', 'bot'); })
      .catch(function () { addMessage('<b>¡GRRR!</b> Mis pensamientos se nublan...', 'bot'); })
      .finally(function () { byId('chat-send-btn').disabled = false; byId('chat-user-input').focus(); });
  }
  byId('chat-send-btn').addEventListener('click', send);
  byId('chat-user-input').addEventListener('keypress', function (e) {
    if (e.key === 'Enter' && !e.shiftKey) { e.preventDefault(); send(); }
  });
  byId('close-chat-btn').addEventListener('click', function () { byId('chat-overlay').classList.add('hidden'); });

  byId('menu-toggle-btn').addEventListener('click', function () { byId('main-menu').classList.toggle('hidden'); });
  byId('show-model-info-btn').addEventListener('click', function () {
    byId('modal-content-area').innerHTML = '<p>Cargando informe...</p>';
    byId('modal-overlay').classList.remove('hidden');
    fetch('/report').then(function (resp) { return resp.text(); }).then(function (html) {
      byId('modal-content-area').innerHTML = html;
    });
  });
  byId('close-modal-btn').addEventListener('click', function () { byId('modal-overlay').classList.add('hidden'); });

  byId('generar-dino-btn').addEventListener('click', function () {
    byId('generar-dino-btn').disabled = true;
    byId('loading-indicator').classList.remove('hidden');
    postJSON('/gallery/generate').then(function (res) {
      if (!res.ok) { throw new Error(res.data.error); }
      window.location.reload();
    }).catch(function (err) {
      alert('No se pudo generar el nuevo espécimen. Error: ' + err.message);
    }).finally(function () {
      byId('generar-dino-btn').disabled = false;
      byId('loading-indicator').classList.add('hidden');
    });
  });
});
  </script>
</body>
</html>
{{ end }}`
