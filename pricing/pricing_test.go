package pricing

import (
	"testing"

	"outfitorbit/models"

	. "github.com/smartystreets/goconvey/convey"
)

func line(price int64, qty int) models.CartItem {
	return models.CartItem{Price: price, Quantity: qty}
}

var sampleCart = []models.CartItem{line(1899, 2), line(899, 1)}

func TestCalculate(t *testing.T) {
	Convey("Pricing the sample cart", t, func() {
		Convey("with standard delivery ships free above the threshold", func() {
			b := Calculate(sampleCart, models.DeliveryStandard)
			So(b.Subtotal, ShouldEqual, 4697)
			So(b.Shipping, ShouldEqual, 0)
			So(b.Tax, ShouldEqual, 845)
			So(b.Total, ShouldEqual, 5542)
			So(b.ItemCount, ShouldEqual, 3)
		})
		Convey("with express delivery always charges the express fee", func() {
			b := Calculate(sampleCart, models.DeliveryExpress)
			So(b.Shipping, ShouldEqual, 199)
			So(b.Total, ShouldEqual, 5741)
		})
	})

	Convey("An empty cart is all zeros", t, func() {
		So(Calculate(nil, models.DeliveryStandard), ShouldResemble, models.PriceBreakdown{})
		So(Calculate([]models.CartItem{}, models.DeliveryExpress), ShouldResemble, models.PriceBreakdown{})
		So(CartSummary(nil), ShouldResemble, models.PriceBreakdown{})
	})
}

func TestSubtotalIgnoresOrder(t *testing.T) {
	Convey("Subtotal does not depend on line order", t, func() {
		items := []models.CartItem{line(10, 3), line(2500, 1), line(0, 7), line(499, 2)}
		want := Subtotal(items)
		So(want, ShouldEqual, 30+2500+0+998)

		reversed := make([]models.CartItem, len(items))
		for i := range items {
			reversed[len(items)-1-i] = items[i]
		}
		So(Subtotal(reversed), ShouldEqual, want)

		rotated := append(append([]models.CartItem{}, items[2:]...), items[:2]...)
		So(Subtotal(rotated), ShouldEqual, want)
	})
}

func TestShippingFee(t *testing.T) {
	Convey("Shipping fee", t, func() {
		Convey("express ignores the subtotal", func() {
			for _, sub := range []int64{0, 1, 1999, 2000, 100000} {
				So(ShippingFee(models.DeliveryExpress, sub), ShouldEqual, 199)
			}
		})
		Convey("standard is free from the threshold up", func() {
			So(ShippingFee(models.DeliveryStandard, 2000), ShouldEqual, 0)
			So(ShippingFee(models.DeliveryStandard, 9999), ShouldEqual, 0)
		})
		Convey("standard below the threshold costs 99", func() {
			So(ShippingFee(models.DeliveryStandard, 1999), ShouldEqual, 99)
			So(ShippingFee(models.DeliveryStandard, 0), ShouldEqual, 99)
		})
	})
}

func TestTax(t *testing.T) {
	Convey("Tax rounds 18% to the nearest rupee", t, func() {
		cases := map[int64]int64{
			0:    0,
			1:    0,  // 0.18
			3:    1,  // 0.54
			25:   5,  // 4.5 rounds up
			100:  18, // exact
			4697: 845,
			2778: 500, // 500.04
		}
		for sub, want := range cases {
			So(Tax(sub), ShouldEqual, want)
		}
	})
}

func TestCartSummary(t *testing.T) {
	Convey("The cart page preview", t, func() {
		b := CartSummary([]models.CartItem{line(899, 1)})
		So(b.Shipping, ShouldEqual, 99)
		So(b.Tax, ShouldEqual, 0)
		So(b.Total, ShouldEqual, 998)
	})
}

func TestMinorUnits(t *testing.T) {
	Convey("Rupees convert to paise", t, func() {
		So(MinorUnits(4995), ShouldEqual, 499500)
	})
}
