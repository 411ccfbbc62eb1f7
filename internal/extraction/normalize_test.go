package extraction

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeDate", func() {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	When("the input is ISO formatted", func() {
		It("should return the exact calendar date", func() {
			Expect(NormalizeDate("2024-03-20")).To(HaveValue(Equal(date(2024, time.March, 20))))
		})
	})

	When("the input is day-first with dots", func() {
		It("should return the exact calendar date", func() {
			Expect(NormalizeDate("20.03.2024")).To(HaveValue(Equal(date(2024, time.March, 20))))
		})

		It("should accept unpadded components", func() {
			Expect(NormalizeDate("5.3.2024")).To(HaveValue(Equal(date(2024, time.March, 5))))
		})
	})

	When("the input is day-first with slashes", func() {
		It("should return the exact calendar date", func() {
			Expect(NormalizeDate("20/03/2024")).To(HaveValue(Equal(date(2024, time.March, 20))))
		})

		It("should accept unpadded components", func() {
			Expect(NormalizeDate("5/3/2024")).To(HaveValue(Equal(date(2024, time.March, 5))))
		})
	})

	When("the input is month-first with slashes", func() {
		It("should fall through to the month-first layout", func() {
			// Day-first cannot parse a month of 13, so month-first wins.
			Expect(NormalizeDate("05/13/2024")).To(HaveValue(Equal(date(2024, time.May, 13))))
		})

		It("should fall through for unpadded components too", func() {
			Expect(NormalizeDate("3/15/2024")).To(HaveValue(Equal(date(2024, time.March, 15))))
		})

		It("should prefer day-first when both layouts parse", func() {
			Expect(NormalizeDate("01/02/2024")).To(HaveValue(Equal(date(2024, time.February, 1))))
		})
	})

	When("the input matches no layout", func() {
		It("should return nil for free text", func() {
			Expect(NormalizeDate("March 20th, 2024")).To(BeNil())
		})

		It("should return nil for the empty string", func() {
			Expect(NormalizeDate("")).To(BeNil())
		})

		It("should return nil for whitespace", func() {
			Expect(NormalizeDate("   ")).To(BeNil())
		})
	})
})

var _ = Describe("NormalizeAmount", func() {
	When("the input is a plain number", func() {
		It("should parse integers", func() {
			Expect(NormalizeAmount("1234")).To(HaveValue(Equal(1234.0)))
		})

		It("should parse dot decimals", func() {
			Expect(NormalizeAmount("1234.50")).To(HaveValue(Equal(1234.50)))
		})
	})

	When("the input uses a decimal comma", func() {
		It("should treat the comma as the decimal point", func() {
			Expect(NormalizeAmount("1234,50")).To(HaveValue(Equal(1234.50)))
		})
	})

	When("the input carries currency symbols and spaces", func() {
		It("should strip a currency suffix", func() {
			Expect(NormalizeAmount("1 234,50 CZK")).To(HaveValue(Equal(1234.50)))
		})

		It("should strip a currency prefix", func() {
			Expect(NormalizeAmount("$1,234")).To(HaveValue(Equal(1.234)))
		})

		It("should strip the euro sign", func() {
			Expect(NormalizeAmount("€99.90")).To(HaveValue(Equal(99.90)))
		})
	})

	When("the input is ambiguous or empty", func() {
		It("should return nil when both separators appear", func() {
			// "1.234,56" leaves two dots after comma replacement.
			Expect(NormalizeAmount("1.234,56")).To(BeNil())
		})

		It("should return nil for the empty string", func() {
			Expect(NormalizeAmount("")).To(BeNil())
		})

		It("should return nil for symbol-only input", func() {
			Expect(NormalizeAmount("CZK")).To(BeNil())
		})
	})
})

var _ = Describe("NormalizeDateField", func() {
	It("should return nil for a null field", func() {
		Expect(NormalizeDateField(Field{})).To(BeNil())
	})

	It("should normalize a present field", func() {
		Expect(NormalizeDateField(NewField("2024-01-15"))).To(
			HaveValue(Equal(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))))
	})
})

var _ = Describe("NormalizeAmountField", func() {
	It("should return nil for a null field", func() {
		Expect(NormalizeAmountField(Field{})).To(BeNil())
	})

	It("should normalize a present field", func() {
		Expect(NormalizeAmountField(NewField("42,75"))).To(HaveValue(Equal(42.75)))
	})
})
