/*
   CartFlash - cartridge flash save driver
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of CartFlash.

   CartFlash is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   CartFlash is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with CartFlash. If not, see <http://www.gnu.org/licenses/>.
*/

/*
	Package flash is a driver for the flash chips found on game cartridges. It
	persists a single structure and survives power loss.

	All chip operations are preceded by an unlock sequence. Bytes are
	programmed one at a time, and each is verified by reading it back, with a
	bounded number of retries. Erasing is only possible for the whole chip.

	To tell an erased chip from one holding a structure, the payload length is
	stored at the start of the chip, and a copy of it near the end. A structure
	is present iff both agree and are not 0xffffffff, the value of an erased
	chip.
*/
package flash
