package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var resetPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>FitCity password reset</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: linear-gradient(135deg,#4a90e2,#9013fe); min-height: 100vh; display: flex; justify-content: center; align-items: center; }
.card { background: #fff; color: #333; padding: 24px; border-radius: 8px; width: 90%; max-width: 420px; box-shadow: 0 10px 40px rgba(0,0,0,0.2); }
input { width: 100%; padding: 10px; margin: 8px 0; border: 1px solid #ccc; border-radius: 4px; box-sizing: border-box; }
button { width: 100%; padding: 12px; font-size: 16px; border: none; border-radius: 4px; cursor: pointer; background: #4a90e2; color: #fff; }
#confirm { display: none; }
#status { min-height: 1.2em; margin-top: 12px; }
</style>
</head>
<body>
<div class="card">
  <h2>Reset your password</h2>
  <form id="request" onsubmit="return requestCode(event)">
    <input type="email" name="email" placeholder="Email" required />
    <button type="submit">Send code</button>
  </form>
  <form id="confirm" onsubmit="return confirmReset(event)">
    <input type="text" name="code" placeholder="6-digit code" inputmode="numeric" pattern="[0-9]{6}" required />
    <input type="password" name="newPassword" placeholder="New password" required />
    <button type="submit">Set new password</button>
  </form>
  <p id="status"></p>
</div>
<script>
let email = '';
function show(msg) { document.getElementById('status').textContent = msg; }
async function post(path, body) {
  const response = await fetch(path, {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify(body)
  });
  return response.json();
}
async function requestCode(event) {
  event.preventDefault();
  email = new FormData(event.target).get('email');
  const data = await post('/api/v1/auth/password-reset/request', { email });
  show(data.message);
  if (data.redirectTo) { window.location.href = data.redirectTo; return false; }
  if (data.success) { document.getElementById('confirm').style.display = 'block'; }
  return false;
}
async function confirmReset(event) {
  event.preventDefault();
  const form = new FormData(event.target);
  const data = await post('/api/v1/auth/password-reset/confirm', {
    email, code: form.get('code'), newPassword: form.get('newPassword')
  });
  show(data.message);
  return false;
}
</script>
</body>
</html>`

// RegisterPages serves the browser form driving both reset endpoints.
func RegisterPages(e *echo.Echo) {
	e.GET("/password-reset", func(c echo.Context) error {
		return c.HTML(http.StatusOK, resetPageHTML)
	})
}
