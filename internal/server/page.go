package server

// indexPage is the single-page upload UI. Kept inline so the binary is
// self-contained.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Comic to Premiere</title>
<style>
  body { font-family: sans-serif; max-width: 640px; margin: 40px auto; padding: 0 16px; color: #222; }
  h1 { font-size: 1.4em; }
  fieldset { border: 1px solid #ccc; border-radius: 6px; margin-bottom: 16px; }
  label { display: block; margin: 8px 0 4px; }
  textarea { width: 100%; height: 80px; }
  button { padding: 10px 24px; font-size: 1em; cursor: pointer; }
  #bar { width: 100%; height: 20px; background: #eee; border-radius: 4px; overflow: hidden; display: none; }
  #fill { height: 100%; width: 0; background: #4a90d9; transition: width .3s; }
  #stage { margin: 8px 0; color: #555; }
  #result { display: none; margin-top: 16px; }
  #error { color: #b00; }
</style>
</head>
<body>
<h1>Comic to Premiere</h1>
<p>Upload comic panels (or a whole PDF) and the voice-over track. You get back
a ZIP with the processed panels, the audio and a Premiere Pro timeline.</p>

<form id="form">
  <fieldset>
    <legend>Panels</legend>
    <label>Panel images (in reading order)
      <input type="file" name="panels" multiple accept=".jpg,.jpeg,.png,.webp">
    </label>
    <label>… or a comic PDF (one panel per page)
      <input type="file" name="comic_pdf" accept=".pdf">
    </label>
    <label><input type="checkbox" name="remove_text" checked> Mask speech bubbles</label>
  </fieldset>
  <fieldset>
    <legend>Audio</legend>
    <label>Voice-over file
      <input type="file" name="audio" accept=".mp3,.wav,.m4a,.aac,.ogg" required>
    </label>
    <label>Script text (optional, helps the timing model)
      <textarea name="script" placeholder="Panel 1: ..."></textarea>
    </label>
  </fieldset>
  <button type="submit">Create timeline</button>
</form>

<div id="stage"></div>
<div id="bar"><div id="fill"></div></div>
<div id="error"></div>

<div id="result">
  <p><a id="download" href="#">Download comic_to_premiere.zip</a></p>
  <p>Or scan to download on another device:</p>
  <img id="qr" alt="download QR code" width="256" height="256">
</div>

<script>
const form = document.getElementById('form');
form.addEventListener('submit', async (e) => {
  e.preventDefault();
  document.getElementById('error').textContent = '';
  document.getElementById('result').style.display = 'none';
  document.getElementById('bar').style.display = 'block';

  const resp = await fetch('/api/jobs', { method: 'POST', body: new FormData(form) });
  const body = await resp.json();
  if (!resp.ok) {
    document.getElementById('error').textContent = body.error || 'upload failed';
    return;
  }
  watch(body.id);
});

function watch(id) {
  const proto = location.protocol === 'https:' ? 'wss' : 'ws';
  const ws = new WebSocket(proto + '://' + location.host + '/ws/' + id);
  ws.onmessage = (msg) => {
    const ev = JSON.parse(msg.data);
    document.getElementById('stage').textContent = ev.stage || ev.status;
    document.getElementById('fill').style.width = (ev.percent || 0) + '%';
    if (ev.status === 'completed') {
      document.getElementById('download').href = '/download/' + id;
      document.getElementById('qr').src = '/download/' + id + '/qr';
      document.getElementById('result').style.display = 'block';
      ws.close();
    } else if (ev.status === 'failed') {
      document.getElementById('error').textContent = ev.error || 'processing failed';
      ws.close();
    }
  };
}
</script>
</body>
</html>
`
