package analysis

const (
	Title   = "Bike Rental Analysis Dashboard"
	Intro   = "This analysis uses the daily and hourly bike-sharing datasets to explore the factors that influence bike rentals."
	Caption = "Copyright © Alifia Luthfi 2024"
)

var conclusions = []string{
	"Several factors, such as temperature, humidity and time of day, have a significant effect on the number of bike rentals. On clear days with higher temperatures rentals tend to increase, while bad weather and lower temperatures tend to reduce them.",
	"There is a significant positive relationship between temperature and the number of rentals. As the temperature rises, rentals also tend to rise, which suggests riders prefer to rent bikes in warm weather when riding is more comfortable.",
	"Rentals peak between 17:00 and 19:00, when many people are heading home from work or school. Rentals are lowest between 23:00 and 05:00, when most users are not riding.",
	"Busy hours fall in the late afternoon, especially between 17:00 and 18:00, while quiet hours are in the early morning around 06:00 to 08:00 and at night after 20:00.",
}

// Conclusions returns the fixed closing paragraphs.
func Conclusions() []string {
	return append([]string(nil), conclusions...)
}
