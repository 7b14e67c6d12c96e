package ui

const indexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>MiRo dashboard</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; background: #0b0b0c; color: #eaeaea; }
    .wrap { display: grid; grid-template-columns: repeat(auto-fill, minmax(320px, 1fr)); gap: 12px; padding: 12px; }
    .card { background: #131316; border: 1px solid #242428; border-radius: 12px; padding: 12px; }
    .card h3 { margin: 0 0 8px 0; font-size: 13px; opacity: 0.85; }
    canvas { width: 100%; background: #0f0f11; border-radius: 8px; }
    .cams { display: grid; grid-template-columns: 1fr 1fr; gap: 6px; }
    .cam { position: relative; }
    .cam img { width: 100%; display: block; border-radius: 8px; image-rendering: pixelated; }
    .cam img.ov { position: absolute; inset: 0; opacity: 0.55; mix-blend-mode: screen; }
    .row { display: flex; gap: 14px; align-items: center; font-size: 12px; opacity: 0.85; }
    .faces img { width: 96px; height: 96px; }
    .tag { font-size: 11px; padding: 2px 8px; border: 1px solid #2b2b33; border-radius: 999px; }
    .wide img { width: 100%; image-rendering: pixelated; }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="card"><h3>Action selection</h3><canvas id="action" width="420" height="300"></canvas></div>
    <div class="card"><h3>Affect</h3><canvas id="affect" width="420" height="300"></canvas>
      <div class="row faces"><img id="mood"/><img id="sleep"/></div></div>
    <div class="card"><h3>Motivation</h3><canvas id="motivation" width="420" height="300"></canvas></div>
    <div class="card"><h3>Vision</h3>
      <div class="cams">
        <div class="cam"><img id="camL"/><img id="ovL" class="ov"/></div>
        <div class="cam"><img id="camR"/><img id="ovR" class="ov"/></div>
      </div>
      <div class="row" style="margin-top:8px">
        <label><input type="checkbox" id="tgl"/> attention overlay</label>
        <label><input type="checkbox" id="tglL"/> overlay (large)</label>
      </div>
    </div>
    <div class="card wide"><h3>Wide field and audio</h3><img id="wide"/></div>
    <div class="card"><h3>Time of day</h3><div class="row"><img id="clock" width="96"/><span id="hour" class="tag"></span></div>
      <div class="row" style="margin-top:10px"><span id="conn" class="tag">connecting</span></div></div>
  </div>
<script>
function src(v) { if (!v) return ''; return v.startsWith('data:') ? v : '/' + v; }
function setImg(id, v) { const el = document.getElementById(id); const s = src(v); el.style.display = s ? '' : 'none'; if (s && el.getAttribute('src') !== s) el.src = s; }

const bg = {};
function chart(id, c) {
  const cv = document.getElementById(id), g = cv.getContext('2d');
  const W = cv.width, H = cv.height, P = 36;
  g.clearRect(0, 0, W, H);
  const sx = v => P + (v - c.x.min) / ((c.x.max - c.x.min) || 1) * (W - 2 * P);
  const sy = v => H - P - (v - c.y.min) / ((c.y.max - c.y.min) || 1) * (H - 2 * P);
  if (c.image) {
    const s = src(c.image);
    let im = bg[s];
    if (!im) { im = new Image(); im.src = s; bg[s] = im; }
    if (im.complete) g.drawImage(im, sx(c.x.min), sy(c.y.max), sx(c.x.max) - sx(c.x.min), sy(c.y.min) - sy(c.y.max));
  }
  g.strokeStyle = '#444'; g.strokeRect(P, P, W - 2 * P, H - 2 * P);
  g.fillStyle = '#aaa'; g.font = '11px system-ui';
  g.fillText(c.x.title || '', W / 2 - 20, H - 8);
  g.save(); g.translate(10, H / 2 + 20); g.rotate(-Math.PI / 2); g.fillText(c.y.title || '', 0, 0); g.restore();
  for (const s of (c.series || [])) {
    g.fillStyle = s.color; g.strokeStyle = s.color;
    if (s.kind === 'bar') {
      const n = (s.categories || s.x).length, h = (H - 2 * P) / Math.max(n, 1);
      s.x.forEach((v, i) => {
        const x0 = sx(0), x1 = sx(v), y = P + i * h + h * 0.15;
        g.fillRect(Math.min(x0, x1), y, Math.abs(x1 - x0), h * 0.7);
        if (s.categories && v >= 0) { g.fillStyle = '#ccc'; g.fillText(s.categories[i], sx(c.x.min) + 4, y + h * 0.5); g.fillStyle = s.color; }
      });
    } else if (s.kind === 'line') {
      g.beginPath(); s.x.forEach((v, i) => i ? g.lineTo(sx(v), sy(s.y[i])) : g.moveTo(sx(v), sy(s.y[i]))); g.stroke();
      if (s.x.length) g.fillText(s.name, sx(s.x[s.x.length - 1]) - 30, sy(s.y[s.y.length - 1]) - 6);
    } else {
      s.x.forEach((v, i) => { g.beginPath(); g.arc(sx(v), sy(s.y[i]), 7, 0, 2 * Math.PI); g.fill(); });
    }
  }
}

let toggles = { overlay: false, overlay_large: false };
const large = () => toggles.overlay_large;

function onFast(p) {
  chart('action', p.action);
  chart('affect', large() ? p.affect_large : p.affect);
  chart('motivation', p.motivation);
  setImg('mood', p.mood_face); setImg('sleep', p.sleep_face);
}
function onMedium(p) {
  const v = large() ? p.large : p.small;
  setImg('camL', v.camera_left); setImg('camR', v.camera_right);
  setImg('ovL', v.priority_left); setImg('ovR', v.priority_right);
  setImg('wide', p.wide_audio);
}
function onSlow(p) { setImg('clock', p.clock); document.getElementById('hour').textContent = p.hour + ':00'; }
const handlers = { fast: onFast, medium: onMedium, slow: onSlow };

for (const k of ['fast', 'medium', 'slow']) {
  fetch('/api/' + k).then(r => r.ok ? r.json() : null).then(p => p && handlers[k](p)).catch(() => {});
}
fetch('/api/toggles').then(r => r.json()).then(t => {
  toggles = t;
  document.getElementById('tgl').checked = t.overlay;
  document.getElementById('tglL').checked = t.overlay_large;
});
function pushToggles() {
  toggles = { overlay: document.getElementById('tgl').checked, overlay_large: document.getElementById('tglL').checked };
  fetch('/api/toggles', { method: 'POST', headers: { 'Content-Type': 'application/json' }, body: JSON.stringify(toggles) });
}
document.getElementById('tgl').onchange = pushToggles;
document.getElementById('tglL').onchange = pushToggles;

const conn = document.getElementById('conn');
const es = new EventSource('/api/stream');
for (const k of Object.keys(handlers)) es.addEventListener(k, e => handlers[k](JSON.parse(e.data)));
es.addEventListener('ping', () => { conn.textContent = 'live'; });
es.onerror = () => { conn.textContent = 'reconnecting'; };
</script>
</body>
</html>
`
