// internal/testutil/fixtures.go
package testutil

// Fixture data para tests (valores primitivos solamente, sin dependencias de domain)

// FixtureSiteDomains contiene dominios de retail válidos.
var FixtureSiteDomains = []string{
	"amazon.com",
	"bestbuy.com",
	"walmart.com",
	"target.com",
	"books.toscrape.com",
}

// FixtureInvalidDomains contiene dominios inválidos.
var FixtureInvalidDomains = []string{
	"",
	"not a domain",
	"192.168.1.1",
	"2001:db8::1",
	"-invalid.com",
	"invalid-.com",
	".example.com",
	"example..com",
}

// ProductPageHTML es una ficha de producto típica de retail con ruido
// (scripts, nav, recomendaciones) alrededor del producto principal.
const ProductPageHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Apple iPhone 16 Pro 128GB - Example Store</title>
  <script>window.dataLayer = [{"price": 1.00}];</script>
  <style>.price { color: red; }</style>
</head>
<body>
  <nav><a href="/">Home</a> <a href="/cart">Shopping Cart 3 items</a></nav>
  <main>
    <h1 class="product-title">Apple iPhone 16 Pro 128GB Desert Titanium</h1>
    <div class="product-price"><span class="price-current">$999.99</span></div>
    <p class="stock-availability">In Stock</p>
    <ul class="features">
      <li>6.3-inch Super Retina XDR display</li>
      <li>A18 Pro chip</li>
    </ul>
    <div class="recommendations">
      <h2>Customers also bought</h2>
      <span class="price">$19.99</span>
    </div>
  </main>
  <footer>Copyright 2024 Example Store</footer>
</body>
</html>`

// BookPageHTML es una ficha de books.toscrape.com.
const BookPageHTML = `<!DOCTYPE html>
<html>
<body>
  <div class="page_inner">
    <article class="product_page">
      <div class="row">
        <div class="col-sm-6 product_main">
          <h1>A Light in the Attic</h1>
          <p class="price_color">£51.77</p>
          <p class="instock availability"><i class="icon-ok"></i> In stock (22 available)</p>
          <p class="star-rating Three"></p>
        </div>
      </div>
    </article>
  </div>
</body>
</html>`

// BookCatalogueHTML es un listado de books.toscrape.com.
const BookCatalogueHTML = `<!DOCTYPE html>
<html>
<body>
  <ol class="row">
    <li>
      <article class="product_pod">
        <h3><a href="catalogue/a-light-in-the-attic_1000/index.html" title="A Light in the Attic">A Light in the ...</a></h3>
        <div class="product_price"><p class="price_color">£51.77</p><p class="instock availability">In stock</p></div>
      </article>
    </li>
    <li>
      <article class="product_pod">
        <h3><a href="catalogue/tipping-the-velvet_999/index.html" title="Tipping the Velvet">Tipping the Velvet</a></h3>
        <div class="product_price"><p class="price_color">£53.74</p><p class="instock availability">In stock</p></div>
      </article>
    </li>
  </ol>
</body>
</html>`

// CaptchaPageHTML simula una página de verificación anti-bot.
const CaptchaPageHTML = `<!DOCTYPE html>
<html>
<body>
  <main>
    <h1>Please verify you are human</h1>
    <p>Our systems have detected unusual traffic. Complete the security check to continue.</p>
  </main>
</body>
</html>`
