package favorites

const discriminatorSize = 8

func putDiscriminator(dst []byte, discriminator []byte, offset *int) {
	copy(dst, discriminator)
	*offset += discriminatorSize
}

func getDiscriminator(src []byte, dst *[]byte, offset *int) {
	*dst = make([]byte, discriminatorSize)
	copy(*dst, src[*offset:])
	*offset += discriminatorSize
}
