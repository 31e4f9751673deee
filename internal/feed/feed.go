// internal/feed/feed.go
package feed

// Feed is the document a supplier publishes: shared category dictionary
// plus the goods the shop currently offers.
type Feed struct {
	Shop       string         `yaml:"shop"`
	Categories []FeedCategory `yaml:"categories"`
	Goods      []FeedGood     `yaml:"goods"`
}

type FeedCategory struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type FeedGood struct {
	ID         int                    `yaml:"id"`
	Name       string                 `yaml:"name"`
	Category   int                    `yaml:"category"`
	Model      string                 `yaml:"model"`
	Price      float64                `yaml:"price"`
	PriceRRC   float64                `yaml:"price_rrc"`
	Quantity   int                    `yaml:"quantity"`
	Parameters map[string]interface{} `yaml:"parameters"`
}
