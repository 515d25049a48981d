package html

import "strings"

// Names shared by the CSRF middleware and the page script.
const (
	CSRFCookie = "X-CSRF-Token"
	CSRFHeader = "X-CSRF-Token"
	CSRFField  = "_csrf"
)

// csrfScript fills the CSRF field of a POST form at submit time, so forms
// rendered after page load (lane editors, confirm dialogs) are covered too.
const csrfScript = `<script>
(function () {
  function token() {
    var parts = document.cookie ? document.cookie.split(";") : [];
    for (var i = 0; i < parts.length; i++) {
      var c = parts[i].trim();
      if (c.indexOf("{{cookie}}=") === 0) return decodeURIComponent(c.substring("{{cookie}}".length + 1));
    }
    return "";
  }

  document.addEventListener("submit", function (ev) {
    var form = ev.target;
    if (!(form instanceof HTMLFormElement)) return;
    if ((form.getAttribute("method") || "GET").toUpperCase() !== "POST") return;
    var value = token();
    if (!value) return;
    var input = form.querySelector("input[name='{{field}}']");
    if (!input) {
      input = document.createElement("input");
      input.type = "hidden";
      input.name = "{{field}}";
      form.appendChild(input);
    }
    input.value = value;
  }, true);
})();
</script>`

// CSRFFormScript returns the script tag rendered into every page head.
func CSRFFormScript() string {
	return strings.NewReplacer("{{cookie}}", CSRFCookie, "{{field}}", CSRFField).Replace(csrfScript)
}
