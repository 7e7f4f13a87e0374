package yiiep

import (
	"html/template"
	"net/url"
	"strings"
)

// PayURI is the page where an end user pays billHash.
func (c *Client) PayURI(billHash string) string {
	return c.baseURL + "pay/" + url.PathEscape(billHash)
}

// QRSource is the image URL of the QR code for billHash.
func (c *Client) QRSource(billHash string) string {
	return c.baseURL + "qrcode/" + url.PathEscape(billHash)
}

// AppLinkURI opens billHash in the mobile application.
func (c *Client) AppLinkURI(billHash string) string {
	return c.baseURL + "app/" + url.PathEscape(billHash)
}

var (
	payLinkTmpl = template.Must(template.New("link").Parse(
		`<a class="{{.Classes}}" target="_blank" href="{{.PayURI}}">YiiepPay</a>`))
	payQRTmpl = template.Must(template.New("qr").Parse(
		`<a target="_blank" href="{{.PayURI}}"><img src="{{.QRSource}}" class="{{.Classes}}"></a>`))
)

type linkView struct {
	Classes  string
	PayURI   string
	QRSource string
}

// PayLink renders an anchor to the pay page.
func (c *Client) PayLink(billHash, classes string) template.HTML {
	return c.render(payLinkTmpl, billHash, classes)
}

// PayQR renders the QR code image wrapped in an anchor to the pay page.
func (c *Client) PayQR(billHash, classes string) template.HTML {
	return c.render(payQRTmpl, billHash, classes)
}

func (c *Client) render(t *template.Template, billHash, classes string) template.HTML {
	var sb strings.Builder
	// the templates are static and the view has only strings, Execute cannot fail
	_ = t.Execute(&sb, linkView{Classes: classes, PayURI: c.PayURI(billHash), QRSource: c.QRSource(billHash)})
	return template.HTML(sb.String())
}
